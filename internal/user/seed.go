package user

import (
	"context"
	"fmt"

	"pediattend/internal/auth"
)

// Seed creates one demo student and one demo admin when they do not already
// exist. It is a first-run convenience gated behind SEED_DEMO and never runs
// on the request path.
func (r *Repository) Seed(ctx context.Context) error {
	demos := []struct {
		phone, email string
		password     string
		userType     string
		fullName     string
	}{
		{phone: "10000001", password: "student-demo", userType: TypeStudent, fullName: "Demo Student"},
		{email: "admin@pediattend.local", password: "admin-demo", userType: TypeAdmin, fullName: "Demo Admin"},
	}

	for _, d := range demos {
		ident := d.phone
		if ident == "" {
			ident = d.email
		}
		existing, err := r.ByPhoneOrEmail(ctx, ident)
		if err != nil {
			return fmt.Errorf("seed lookup %s: %w", ident, err)
		}
		if existing != nil {
			continue
		}

		hash, err := auth.HashPassword(d.password)
		if err != nil {
			return fmt.Errorf("seed hash %s: %w", ident, err)
		}
		u := &User{
			PasswordHash: hash,
			UserType:     d.userType,
			FullName:     d.fullName,
			IsActive:     true,
		}
		if d.phone != "" {
			phone := d.phone
			u.Phone = &phone
		}
		if d.email != "" {
			email := d.email
			u.Email = &email
		}
		if err := r.Create(ctx, u); err != nil {
			return fmt.Errorf("seed create %s: %w", ident, err)
		}
	}
	return nil
}
