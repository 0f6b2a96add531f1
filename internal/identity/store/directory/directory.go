// Package directory persists the business records a registration provisions:
// customers and their contacts.
package directory

import "warden/internal/identity/models"

// primaryContactFrom seeds a customer's canonical contact. The customer name is a
// placeholder last name until the caller overwrites it.
func primaryContactFrom(c *models.Customer) *models.Contact {
	fields := make(map[string]string)
	for _, target := range models.SharedFields {
		if v, ok := c.Fields[target]; ok {
			fields[target] = v
		}
	}
	return &models.Contact{
		CustomerID: c.ID,
		Entity:     c.Entity,
		LastName:   c.Name,
		Email:      c.Email,
		Fields:     fields,
	}
}
