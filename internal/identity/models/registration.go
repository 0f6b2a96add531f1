package models

import (
	"maps"
	"slices"
	"strings"
)

// LoginAtToken replaces "@" when a login is derived from an email address.
const LoginAtToken = "[at]"

// Signup profile keys mapped onto the customer record only.
var CustomerOnlyFields = map[string]string{
	"name_alias":              "name_alias",
	"customer_ref_ext":        "ref_ext",
	"url":                     "url",
	"parent":                  "parent",
	"customer_note_private":   "note_private",
	"customer_note_public":    "note_public",
	"siren":                   "idprof1",
	"siret":                   "idprof2",
	"ape":                     "idprof3",
	"tva_intra":               "tva_intra",
	"status":                  "status",
	"capital":                 "capital",
	"typent_id":               "typent_id",
	"forme_juridique_code":    "forme_juridique_code",
	"code_client":             "code_client",
	"default_lang":            "default_lang",
	"barcode":                 "barcode",
	"multicurrency_code":      "multicurrency_code",
	"customer_prospect_level": "fk_prospectlevel",
}

// Signup profile keys mapped onto the contact record only. Name fields are not
// listed: the contact always receives the normalized first and last name.
var ContactOnlyFields = map[string]string{
	"gender":                   "gender",
	"civility":                 "civility",
	"contact_ref_ext":          "ref_ext",
	"poste":                    "poste",
	"photo":                    "photo",
	"birthday":                 "birthday",
	"contact_note_private":     "note_private",
	"contact_note_public":      "note_public",
	"phone_perso":              "phone_perso",
	"phone_mobile":             "phone_mobile",
	"contact_prospectlevel_id": "fk_prospectlevel",
	"contact_status":           "status",
	"contact_default_lang":     "default_lang",
}

// Signup profile keys copied onto both records.
var SharedFields = map[string]string{
	"zip":        "zip",
	"town":       "town",
	"address":    "address",
	"state_id":   "state_id",
	"country_id": "country_id",
	"phone":      "phone",
	"fax":        "fax",
}

// UnknownProfileFields returns the sorted profile keys no mapping table accepts.
func UnknownProfileFields(profile map[string]string) []string {
	var unknown []string
	for key := range profile {
		if _, ok := CustomerOnlyFields[key]; ok {
			continue
		}
		if _, ok := ContactOnlyFields[key]; ok {
			continue
		}
		if _, ok := SharedFields[key]; ok {
			continue
		}
		unknown = append(unknown, key)
	}
	slices.Sort(unknown)
	return unknown
}

// CustomerFields projects a signup profile onto customer record fields.
func CustomerFields(profile map[string]string) map[string]string {
	out := make(map[string]string)
	apply(out, profile, CustomerOnlyFields)
	apply(out, profile, SharedFields)
	return out
}

// ContactFields projects a signup profile onto contact record fields.
func ContactFields(profile map[string]string) map[string]string {
	out := make(map[string]string)
	apply(out, profile, ContactOnlyFields)
	apply(out, profile, SharedFields)
	return out
}

func apply(dst, profile, table map[string]string) {
	for from, to := range table {
		if v, ok := profile[from]; ok {
			dst[to] = v
		}
	}
}

// NormalizeRegistration applies the signup derivation rules in place.
// Applying it to an already normalized request changes nothing.
func NormalizeRegistration(req *RegisterRequest, generatePassword func() string) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Login = strings.TrimSpace(req.Login)
	req.Name = strings.TrimSpace(req.Name)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if req.Email != "" && (req.Login == "" || strings.EqualFold(req.Login, req.Email) || IsEmail(req.Login)) {
		req.Login = DeriveLogin(req.Email)
	}

	if req.Name != "" && req.FirstName == "" && req.LastName == "" {
		req.FirstName, req.LastName = SplitDisplayName(req.Name)
	}

	if req.LastName == "" {
		req.LastName = EmailLocalPart(req.Email)
	}

	if req.GeneratePassword && req.Password == "" && generatePassword != nil {
		req.Password = generatePassword()
	}
}

// DeriveLogin turns an email address into a login that never contains "@".
func DeriveLogin(email string) string {
	return strings.ReplaceAll(email, "@", LoginAtToken)
}

// SplitDisplayName splits on the first space. A single token becomes the last name.
func SplitDisplayName(name string) (first, last string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(name), " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", first
	}
	return first, rest
}

// EmailLocalPart returns the part of email before "@".
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// IsEmail performs lightweight validation of an email address format.
func IsEmail(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	return !strings.Contains(domain, "@") && strings.Contains(domain, ".")
}

// cloneFields copies a string map, returning an empty map for nil.
func cloneFields(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	return maps.Clone(in)
}
