// handlers/energy_routes.go
package handlers

import (
	"greenscore-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEnergyRoutes(app *fiber.App, energy *services.EnergyService, bills *services.BillService) {
	app.Post("/api/energy/analyze", energy.Analyze)

	app.Post("/api/bills/upload", bills.UploadBill)
	app.Get("/api/bills", bills.ListBills)
}
