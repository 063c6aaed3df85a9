package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the storefront API on g
func RegisterRoutes(g *echo.Group, catalogHandler *CatalogHandler, cartHandler *CartHandler) {
	g.GET("/home", catalogHandler.Home)
	g.GET("/categories", catalogHandler.ListCategories)
	g.GET("/products", catalogHandler.ListProducts)
	g.GET("/products/:slug", catalogHandler.GetProduct)

	g.GET("/cart", cartHandler.ViewCart)
	g.POST("/cart/add/:product_id", cartHandler.AddToCart)
	g.POST("/cart/remove/:item_id", cartHandler.RemoveFromCart)
	g.POST("/cart/update/:item_id", cartHandler.UpdateCartQuantity)

	// Read-only invocations never mutate
	g.GET("/cart/add/:product_id", RedirectToProducts)
	g.GET("/cart/remove/:item_id", RedirectToCart)
	g.GET("/cart/update/:item_id", RedirectToCart)

	g.GET("/checkout", cartHandler.Checkout)
}
