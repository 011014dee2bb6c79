package db

import (
	"maps"
	"slices"
)

// Clone returns a deep copy. Update mutates a clone so a failed operation
// never leaks into the live snapshot.
func (d *Database) Clone() *Database {
	c := &Database{
		Users:          slices.Clone(d.Users),
		Products:       slices.Clone(d.Products),
		Requests:       slices.Clone(d.Requests),
		Offers:         slices.Clone(d.Offers),
		Chats:          slices.Clone(d.Chats),
		Messages:       slices.Clone(d.Messages),
		Ratings:        slices.Clone(d.Ratings),
		PasswordResets: slices.Clone(d.PasswordResets),
		Notifications:  slices.Clone(d.Notifications),
		Counters:       maps.Clone(d.Counters),
	}
	for i := range c.Users {
		u := &c.Users[i]
		if u.Location != nil {
			loc := *u.Location
			u.Location = &loc
		}
		u.FrequentAddresses = slices.Clone(u.FrequentAddresses)
	}
	for i := range c.Products {
		p := &c.Products[i]
		if p.PriceBase != nil {
			v := *p.PriceBase
			p.PriceBase = &v
		}
		if p.EtaValue != nil {
			v := *p.EtaValue
			p.EtaValue = &v
		}
		p.Images = slices.Clone(p.Images)
	}
	for i := range c.Requests {
		if q := c.Requests[i].Quantity; q != nil {
			v := *q
			c.Requests[i].Quantity = &v
		}
	}
	for i := range c.Offers {
		c.Offers[i].Attachments = slices.Clone(c.Offers[i].Attachments)
	}
	for i := range c.Notifications {
		c.Notifications[i].Payload = maps.Clone(c.Notifications[i].Payload)
	}
	if c.Counters == nil {
		c.Counters = make(map[string]int)
	}
	return c
}

// normalize replaces nil tables with empty ones so the snapshot always
// serializes with every key present.
func (d *Database) normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Requests == nil {
		d.Requests = []Request{}
	}
	if d.Offers == nil {
		d.Offers = []Offer{}
	}
	if d.Chats == nil {
		d.Chats = []Chat{}
	}
	if d.Messages == nil {
		d.Messages = []Message{}
	}
	if d.Ratings == nil {
		d.Ratings = []Rating{}
	}
	if d.PasswordResets == nil {
		d.PasswordResets = []PasswordReset{}
	}
	if d.Notifications == nil {
		d.Notifications = []Notification{}
	}
	if d.Counters == nil {
		d.Counters = make(map[string]int)
	}
}
