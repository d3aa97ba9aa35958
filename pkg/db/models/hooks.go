package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BeforeCreate hooks assign UUIDs client-side so inserts behave the same on
// backends without gen_random_uuid().

func (u *User) BeforeCreate(*gorm.DB) error            { ensureID(&u.ID); return nil }
func (p *CustomerProfile) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error        { ensureID(&c.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error         { ensureID(&p.ID); return nil }
func (i *ProductImage) BeforeCreate(*gorm.DB) error    { ensureID(&i.ID); return nil }
func (c *Cart) BeforeCreate(*gorm.DB) error            { ensureID(&c.ID); return nil }
func (i *CartItem) BeforeCreate(*gorm.DB) error        { ensureID(&i.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error           { ensureID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error       { ensureID(&i.ID); return nil }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
