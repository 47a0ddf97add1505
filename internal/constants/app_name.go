package constants

const (
	AppShoppingCartService = "shopping-cart-service"
	AppMain                = "shopping-cart"
)
