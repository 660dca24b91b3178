// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package sec

// # Account Types

// AccountType is the stored `type` discriminator on a user row.
type AccountType int

const (
	// AccountPatient is the default type for standard registered users.
	AccountPatient AccountType = 0

	// AccountDoctor marks accounts listed in the care directory.
	AccountDoctor AccountType = 1
)

// IsDoctor reports whether the account appears in the doctor directory.
func (t AccountType) IsDoctor() bool { return t == AccountDoctor }

// # Admin Levels

// AdminLevel is the privilege tier of a back-office administrator.
type AdminLevel int

const (
	// LevelOperator can manage content (articles, goods, categories).
	LevelOperator AdminLevel = 0

	// LevelSuper can additionally manage user accounts and other admins.
	LevelSuper AdminLevel = 1
)

// AtLeast checks if the current level meets or exceeds the required tier.
func (l AdminLevel) AtLeast(target AdminLevel) bool { return l >= target }
