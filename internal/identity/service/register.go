package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"warden/internal/identity/events"
	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/requestcontext"
)

// OriginAttribute is the user attribute carrying the registration origin tag.
const OriginAttribute = "origin"

// Registrar provisions a customer, its primary contact and a user as one unit.
type Registrar struct {
	*observer
	cfg       Config
	users     UserStore
	directory Directory
	tokens    Tokens
	passwords PasswordHasher
	tx        Transactor
	events    EventPublisher
}

// registration is the state threaded through the steps of one signup.
type registration struct {
	req       *models.RegisterRequest
	customer  *models.Customer
	draft     *models.Contact
	contactID id.ContactID
	user      *models.User
	apiKey    string
}

type registrationStep struct {
	name string
	run  func(r *Registrar, ctx context.Context, reg *registration) error
}

// registrationSteps run in order inside one transaction. Any error rolls all of them back.
var registrationSteps = []registrationStep{
	{"create_customer", (*Registrar).createCustomer},
	{"draft_contact", (*Registrar).draftContact},
	{"create_primary_contact", (*Registrar).createPrimaryContact},
	{"update_contact", (*Registrar).updateContact},
	{"create_user", (*Registrar).createUser},
	{"issue_api_key", (*Registrar).issueAPIKey},
	{"add_to_group", (*Registrar).addToGroup},
	{"set_origin", (*Registrar).setOrigin},
	{"reload_user", (*Registrar).reloadUser},
	{"publish_event", (*Registrar).publishEvent},
}

// Register provisions a new user from raw signup data and returns its projection,
// including the freshly issued API key.
func (r *Registrar) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserProjection, error) {
	if err := r.authorize(ctx, models.RightUserWrite); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return r.register(ctx, req)
}

// RegisterOAuth provisions a user from an OAuth sign-in with a generated password.
func (r *Registrar) RegisterOAuth(ctx context.Context, req *models.OAuthRegisterRequest) (*models.UserProjection, error) {
	if err := r.authorize(ctx, models.RightUserWrite); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return r.register(ctx, &models.RegisterRequest{
		Email:            req.Email,
		Name:             req.Name,
		GeneratePassword: true,
	})
}

func (r *Registrar) register(ctx context.Context, req *models.RegisterRequest) (_ *models.UserProjection, err error) {
	start := time.Now()
	ctx, span := r.startSpan(ctx, "identity.register")
	defer func() {
		endSpan(span, err)
		r.observeRegistrationDuration(float64(time.Since(start).Milliseconds()))
		outcome := "ok"
		if err != nil {
			outcome = string(dErrors.CodeOf(err))
		}
		r.incRegistration(outcome)
	}()

	if req.Entity == 0 {
		req.Entity = r.cfg.DefaultEntity
	}
	models.NormalizeRegistration(req, GeneratePassword)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("login", req.Login))

	reg := &registration{req: req}
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, step := range registrationSteps {
			if err := r.runStep(ctx, step, reg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		err = translate(err, "failed to commit registration")
		r.failure(ctx, "register", err, "login", req.Login)
		return nil, err
	}

	r.logger.InfoContext(ctx, "user registered",
		"user_id", reg.user.ID.String(),
		"customer_id", reg.user.CustomerID.String(),
		"contact_id", reg.user.ContactID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	reg.user.APIKey = reg.apiKey
	return models.NewUserProjection(reg.user), nil
}

func (r *Registrar) runStep(ctx context.Context, step registrationStep, reg *registration) (err error) {
	ctx, span := r.startSpan(ctx, "identity.register."+step.name)
	defer func() { endSpan(span, err) }()
	if err := step.run(r, ctx, reg); err != nil {
		return fmt.Errorf("registration step %q: %w", step.name, err)
	}
	return nil
}

// GeneratePassword produces a unique throwaway password for OAuth and generated signups.
func GeneratePassword() string {
	return "oauth_" + uuid.NewString()
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func (r *Registrar) createCustomer(ctx context.Context, reg *registration) error {
	customer, err := r.directory.CreateCustomer(ctx, &models.Customer{
		Entity: reg.req.Entity,
		Name:   fullName(reg.req.FirstName, reg.req.LastName),
		Email:  reg.req.Email,
		Fields: models.CustomerFields(reg.req.Profile),
	})
	if err != nil {
		return translate(err, "failed to create customer")
	}
	reg.customer = customer
	return nil
}

// draftContact builds the contact values the primary contact is overwritten with.
func (r *Registrar) draftContact(_ context.Context, reg *registration) error {
	reg.draft = &models.Contact{
		Entity:    reg.req.Entity,
		FirstName: reg.req.FirstName,
		LastName:  reg.req.LastName,
		Email:     reg.req.Email,
		Fields:    models.ContactFields(reg.req.Profile),
	}
	return nil
}

func (r *Registrar) createPrimaryContact(ctx context.Context, reg *registration) error {
	contactID, err := r.directory.CreatePrimaryContact(ctx, reg.customer.ID)
	if err != nil {
		return translate(err, "failed to create contact")
	}
	reg.contactID = contactID
	return nil
}

// updateContact replaces the placeholder names of the primary contact with the
// normalized ones and applies the drafted profile fields.
func (r *Registrar) updateContact(ctx context.Context, reg *registration) error {
	contact, err := r.directory.FindContact(ctx, reg.contactID)
	if err != nil {
		return translate(err, "failed to update contact")
	}
	contact.FirstName = reg.draft.FirstName
	contact.LastName = reg.draft.LastName
	if reg.draft.Email != "" {
		contact.Email = reg.draft.Email
	}
	if contact.Fields == nil {
		contact.Fields = make(map[string]string, len(reg.draft.Fields))
	}
	for k, v := range reg.draft.Fields {
		contact.Fields[k] = v
	}
	if err := r.directory.UpdateContact(ctx, contact); err != nil {
		return translate(err, "failed to update contact")
	}
	return nil
}

func (r *Registrar) createUser(ctx context.Context, reg *registration) error {
	hash, err := r.passwords.Hash(reg.req.Password)
	if err != nil {
		return userCreateError(hashFailure(err), err)
	}
	user, err := r.users.Create(ctx, &models.User{
		Entity:       reg.req.Entity,
		Login:        reg.req.Login,
		Email:        reg.req.Email,
		FirstName:    reg.req.FirstName,
		LastName:     reg.req.LastName,
		PasswordHash: hash,
		CustomerID:   reg.customer.ID,
		ContactID:    reg.contactID,
		Rights:       r.cfg.DefaultRights,
	})
	if err != nil {
		return userCreateError(storeCreateFailure(err), err)
	}
	reg.user = user
	return nil
}

func (r *Registrar) issueAPIKey(ctx context.Context, reg *registration) error {
	key, err := issueAPIKey(ctx, r.users, r.tokens, reg.user.ID)
	if err != nil {
		return translate(err, "failed to create api key")
	}
	reg.apiKey = key
	return nil
}

func (r *Registrar) addToGroup(ctx context.Context, reg *registration) error {
	if r.cfg.BaseUserGroup <= 0 {
		return nil
	}
	if err := r.users.AddToGroup(ctx, reg.user.ID, r.cfg.BaseUserGroup); err != nil {
		return translate(err, "failed to add user to group")
	}
	return nil
}

func (r *Registrar) setOrigin(ctx context.Context, reg *registration) error {
	if err := r.users.SetAttribute(ctx, reg.user.ID, OriginAttribute, r.cfg.Origin); err != nil {
		return translate(err, "failed to set user origin")
	}
	return nil
}

// reloadUser returns what storage holds, not what this request built.
func (r *Registrar) reloadUser(ctx context.Context, reg *registration) error {
	user, err := r.users.FindByID(ctx, reg.user.ID)
	if err != nil {
		return translate(err, "failed to reload user")
	}
	reg.user = user
	return nil
}

func (r *Registrar) publishEvent(ctx context.Context, reg *registration) error {
	err := r.events.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Name:       events.UserRegistered,
		OccurredAt: requestcontext.Now(ctx).UTC(),
		UserID:     reg.user.ID,
		Login:      reg.user.Login,
		Email:      reg.user.Email,
		CustomerID: reg.user.CustomerID,
		ContactID:  reg.user.ContactID,
		Origin:     r.cfg.Origin,
		RequestID:  requestcontext.RequestID(ctx),
	})
	if err != nil {
		return &dErrors.Error{Code: dErrors.CodeSubscriberRejected, Message: "registration rejected by subscriber", Err: err}
	}
	return nil
}
