package models

// All lists every persisted model in dependency order, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&SellerProfile{},
		&Book{},
		&Reservation{},
		&SellerRating{},
		&WishlistItem{},
		&VerificationToken{},
	}
}
