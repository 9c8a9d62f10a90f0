package main

import (
	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/interfaces/http/handlers"
	"bookmarket.backend/internal/interfaces/http/middleware"
	"bookmarket.backend/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	authHandler        *handlers.AuthHandler
	bookHandler        *handlers.BookHandler
	sellerHandler      *handlers.SellerHandler
	reservationHandler *handlers.ReservationHandler
	wishlistHandler    *handlers.WishlistHandler
	adminHandler       *handlers.AdminHandler
	authn              *middleware.Authenticator
	gate               *authz.Gate
	authLimiter        ratelimit.Limiter
	idempotency        gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	required := d.authn.Required()
	optional := d.authn.Optional()
	sellerOnly := middleware.RequireSeller(d.gate)
	idempotent := d.idempotency
	if idempotent == nil {
		idempotent = func(c *gin.Context) { c.Next() }
	}
	authLimit := middleware.RateLimit("auth", d.authLimiter)

	v1 := r.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimit, d.authHandler.Register)
			auth.POST("/login", authLimit, d.authHandler.Login)
			auth.POST("/logout", d.authHandler.Logout)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/verify-email", d.authHandler.VerifyEmail)
			auth.POST("/request-password-reset", d.authHandler.RequestPasswordReset)
			auth.POST("/reset-password", authLimit, d.authHandler.ResetPassword)
			auth.GET("/me", required, d.authHandler.Me)
			auth.POST("/change-password", required, d.authHandler.ChangePassword)
		}

		// Book routes (public read, seller write)
		books := v1.Group("/books")
		{
			books.GET("", d.bookHandler.Search)
			books.GET("/mine", required, sellerOnly, d.bookHandler.ListMine)
			books.GET("/:id", optional, d.bookHandler.Get)
			books.POST("", required, sellerOnly, d.bookHandler.Create)
			books.POST("/batch-delete", required, sellerOnly, d.bookHandler.BatchDelete)
			books.PUT("/:id", required, d.bookHandler.Update)
			books.DELETE("/:id", required, d.bookHandler.Delete)
			books.POST("/:id/image", required, d.bookHandler.UploadImage)
			books.PATCH("/:id/status", required, middleware.RequireAdmin(d.gate), d.bookHandler.UpdateStatus)
		}

		// Seller routes
		sellers := v1.Group("/sellers")
		{
			sellers.GET("/:id", d.sellerHandler.Get)
			sellers.GET("/:id/ratings", d.sellerHandler.ListRatings)
			sellers.PUT("/me", required, sellerOnly, d.sellerHandler.UpdateMine)
			sellers.POST("/:id/ratings", required, d.sellerHandler.Rate)
		}
		v1.DELETE("/ratings/:id", required, middleware.RequireAdmin(d.gate), d.sellerHandler.DeleteRating)

		// Reservation routes (protected)
		reservations := v1.Group("/reservations")
		reservations.Use(required)
		{
			reservations.POST("", idempotent, d.reservationHandler.Create)
			reservations.GET("", d.reservationHandler.ListMine)
			reservations.GET("/seller", sellerOnly, d.reservationHandler.ListForSeller)
			reservations.PATCH("/:id/cancel", d.reservationHandler.Cancel)
			reservations.PATCH("/:id/confirm", d.reservationHandler.Confirm)
			reservations.PATCH("/:id/complete", d.reservationHandler.Complete)
		}

		// Wishlist routes (protected)
		wishlist := v1.Group("/wishlist")
		wishlist.Use(required)
		{
			wishlist.GET("", d.wishlistHandler.List)
			wishlist.POST("", d.wishlistHandler.Add)
			wishlist.DELETE("/:bookId", d.wishlistHandler.Remove)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(required, middleware.RequireAdmin(d.gate))
		{
			admin.GET("/users", d.adminHandler.ListUsers)
			admin.DELETE("/users/:id", d.adminHandler.DeleteUser)
			admin.GET("/books", d.bookHandler.ListAll)
			admin.GET("/reservations", d.reservationHandler.ListAll)
			admin.GET("/stats", d.adminHandler.GetStats)
		}
	}
}
