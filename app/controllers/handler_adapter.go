package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/BaanBox/app/repository"
)

// Global controller instances
var (
	storeController *StoreController
	authController  *AuthController
	pageController  *PageController
	userController  *UserController
	adminController *AdminController
)

// InitializeStoreController installs the storefront controller.
func InitializeStoreController(sc *StoreController) {
	storeController = sc
}

// GetStoreController returns the global storefront controller instance
func GetStoreController() *StoreController {
	if storeController == nil {
		panic("store controller not initialized")
	}
	return storeController
}

// InitializeControllers builds the repository backed controllers.
func InitializeControllers(repos *repository.Repositories) {
	authController = NewAuthController(repos)
	pageController = NewPageController(repos)
	userController = NewUserController(repos)
	adminController = NewAdminController(repos)
}

func GetAuthController() *AuthController {
	if authController == nil {
		authController = NewAuthController(repository.GetGlobalRepositories())
	}
	return authController
}

func GetPageController() *PageController {
	if pageController == nil {
		pageController = NewPageController(repository.GetGlobalRepositories())
	}
	return pageController
}

func GetUserController() *UserController {
	if userController == nil {
		userController = NewUserController(repository.GetGlobalRepositories())
	}
	return userController
}

func GetAdminController() *AdminController {
	if adminController == nil {
		adminController = NewAdminController(repository.GetGlobalRepositories())
	}
	return adminController
}

// Adapter functions used by the router

func HandleHome(c *fiber.Ctx) error { return GetStoreController().HandleHome(c) }
func HandleMenu(c *fiber.Ctx) error { return GetStoreController().HandleMenu(c) }
func HandleMenuItem(c *fiber.Ctx) error { return GetStoreController().HandleMenuItem(c) }
func HandleMenuItemAdd(c *fiber.Ctx) error { return GetStoreController().HandleMenuItemAdd(c) }

func HandleCart(c *fiber.Ctx) error { return GetStoreController().HandleCart(c) }
func HandleCartPost(c *fiber.Ctx) error { return GetStoreController().HandleCartPost(c) }

func HandlePlans(c *fiber.Ctx) error { return GetStoreController().HandlePlans(c) }
func HandlePlansSelect(c *fiber.Ctx) error { return GetStoreController().HandlePlansSelect(c) }
func HandleMeals(c *fiber.Ctx) error { return GetStoreController().HandleMeals(c) }
func HandleMealsSelect(c *fiber.Ctx) error { return GetStoreController().HandleMealsSelect(c) }

func HandleCheckoutStart(c *fiber.Ctx) error { return GetStoreController().HandleCheckoutStart(c) }
func HandleCheckout(c *fiber.Ctx) error { return GetStoreController().HandleCheckout(c) }
func HandleCheckoutSubmit(c *fiber.Ctx) error { return GetStoreController().HandleCheckoutSubmit(c) }
func HandleCheckoutCancel(c *fiber.Ctx) error { return GetStoreController().HandleCheckoutCancel(c) }

func HandleOrders(c *fiber.Ctx) error { return GetStoreController().HandleOrders(c) }
func HandleOrderDetail(c *fiber.Ctx) error { return GetStoreController().HandleOrderDetail(c) }
func HandleOrderStatus(c *fiber.Ctx) error { return GetStoreController().HandleOrderStatus(c) }
func HandleOrderPause(c *fiber.Ctx) error { return GetStoreController().HandleOrderPause(c) }
func HandleOrderResume(c *fiber.Ctx) error { return GetStoreController().HandleOrderResume(c) }
func HandleOrderCancel(c *fiber.Ctx) error { return GetStoreController().HandleOrderCancel(c) }
func HandleOrderAutoRenew(c *fiber.Ctx) error { return GetStoreController().HandleOrderAutoRenew(c) }
func HandleNotifications(c *fiber.Ctx) error { return GetStoreController().HandleNotifications(c) }
func HandleMenuAPI(c *fiber.Ctx) error { return GetStoreController().HandleMenuAPI(c) }
func HandleCartAPI(c *fiber.Ctx) error { return GetStoreController().HandleCartAPI(c) }

func HandleAuthLogin(c *fiber.Ctx) error { return GetAuthController().HandleLogin(c) }
func HandleAuthLogout(c *fiber.Ctx) error { return GetAuthController().HandleLogout(c) }
func HandleAuthRegister(c *fiber.Ctx) error { return GetAuthController().HandleRegister(c) }
func HandleAuthActivate(c *fiber.Ctx) error { return GetAuthController().HandleActivate(c) }
func HandleOAuthCallback(c *fiber.Ctx) error {
	return GetAuthController().HandleOAuthCallback(c)
}

func HandlePageDisplay(c *fiber.Ctx) error { return GetPageController().HandlePageDisplay(c) }

func HandleUserSettings(c *fiber.Ctx) error { return GetUserController().HandleSettings(c) }
func HandleUserSettingsPost(c *fiber.Ctx) error { return GetUserController().HandleSettingsPost(c) }

func HandleAdminDashboard(c *fiber.Ctx) error { return GetAdminController().HandleDashboard(c) }
func HandleAdminSettings(c *fiber.Ctx) error { return GetAdminController().HandleSettings(c) }
func HandleAdminSettingsUpdate(c *fiber.Ctx) error { return GetAdminController().HandleSettingsUpdate(c) }
func HandleAdminMenu(c *fiber.Ctx) error { return GetAdminController().HandleMenu(c) }
func HandleAdminMenuCreate(c *fiber.Ctx) error { return GetAdminController().HandleMenuCreate(c) }
func HandleAdminMenuStore(c *fiber.Ctx) error { return GetAdminController().HandleMenuStore(c) }
func HandleAdminMenuEdit(c *fiber.Ctx) error { return GetAdminController().HandleMenuEdit(c) }
func HandleAdminMenuUpdate(c *fiber.Ctx) error { return GetAdminController().HandleMenuUpdate(c) }
func HandleAdminMenuDelete(c *fiber.Ctx) error { return GetAdminController().HandleMenuDelete(c) }
