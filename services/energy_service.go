package services

import (
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
)

// Carbon emission factors (kg CO2 per kWh) by region.
var emissionFactors = map[string]float64{
	"US": 0.5,
	"EU": 0.3,
	"IN": 0.8,
	"CN": 0.7,
}

const defaultEmissionFactor = 0.5

// Appliance is one entry from the appliance setup form.
type Appliance struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Wattage     float64 `json:"wattage"`
	HoursPerDay float64 `json:"hoursPerDay"`
	DaysPerWeek float64 `json:"daysPerWeek"`
}

// ApplianceAnalysis extends an appliance with derived usage figures.
type ApplianceAnalysis struct {
	Appliance
	DailyUsage      float64 `json:"dailyUsage"`      // kWh
	MonthlyUsage    float64 `json:"monthlyUsage"`    // kWh
	CarbonFootprint float64 `json:"carbonFootprint"` // kg CO2/day
	Efficiency      float64 `json:"efficiency"`      // 20..100
}

type EnergyTip struct {
	Category   string  `json:"category"`
	Tip        string  `json:"tip"`
	Impact     string  `json:"impact"`
	Tokens     float64 `json:"tokens"`
	Difficulty string  `json:"difficulty"`
}

type Recommendation struct {
	Type             string `json:"type"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	PotentialSavings string `json:"potentialSavings"`
	Priority         string `json:"priority"`
}

type EnergyAnalysis struct {
	TotalDailyUsage      float64             `json:"totalDailyUsage"`
	TotalMonthlyUsage    float64             `json:"totalMonthlyUsage"`
	TotalCarbonFootprint float64             `json:"totalCarbonFootprint"`
	OverallEfficiency    float64             `json:"overallEfficiency"`
	Appliances           []ApplianceAnalysis `json:"appliances"`
	Tips                 []EnergyTip         `json:"tips"`
	Recommendations      []Recommendation    `json:"recommendations"`
}

// AnalyzeEnergy is pure and deterministic: linear usage formulas, a fixed
// regional factor table and a bounded efficiency score. No state, no I/O.
func AnalyzeEnergy(appliances []Appliance, location string) EnergyAnalysis {
	factor, ok := emissionFactors[location]
	if !ok {
		factor = defaultEmissionFactor
	}

	analysis := EnergyAnalysis{
		Appliances: make([]ApplianceAnalysis, 0, len(appliances)),
	}

	for _, a := range appliances {
		daily := a.Wattage * a.HoursPerDay * a.DaysPerWeek / 7 / 1000
		analysis.TotalDailyUsage += daily
		analysis.Appliances = append(analysis.Appliances, ApplianceAnalysis{
			Appliance:       a,
			DailyUsage:      daily,
			MonthlyUsage:    daily * 30,
			CarbonFootprint: daily * factor,
			Efficiency:      clampEfficiency(100 - a.Wattage/50),
		})
	}

	analysis.TotalMonthlyUsage = analysis.TotalDailyUsage * 30
	analysis.TotalCarbonFootprint = analysis.TotalDailyUsage * factor
	if len(analysis.Appliances) > 0 {
		sum := 0.0
		for _, a := range analysis.Appliances {
			sum += a.Efficiency
		}
		analysis.OverallEfficiency = sum / float64(len(analysis.Appliances))
	}

	analysis.Tips = generateTips(analysis.Appliances)
	analysis.Recommendations = generateRecommendations(analysis.Appliances)
	return analysis
}

func clampEfficiency(v float64) float64 {
	return math.Max(20, math.Min(100, v))
}

// generateTips selects up to three heuristic tips from fixed rules.
func generateTips(appliances []ApplianceAnalysis) []EnergyTip {
	tips := []EnergyTip{}

	for _, a := range appliances {
		if a.Type == "ac" && a.HoursPerDay > 8 {
			tips = append(tips, EnergyTip{
				Category:   "AC Efficiency",
				Tip:        fmt.Sprintf("Your AC runs %v hours daily. Set temperature to 24°C and use ceiling fans to reduce usage by 20%%.", a.HoursPerDay),
				Impact:     fmt.Sprintf("Save %.1f kWh/day", a.DailyUsage*0.2),
				Tokens:     15,
				Difficulty: "Easy",
			})
			break
		}
	}

	for _, a := range appliances {
		if a.Wattage > 2000 {
			tips = append(tips, EnergyTip{
				Category:   "High Power Usage",
				Tip:        "Consider using high-power appliances during off-peak hours (10 PM - 6 AM) for lower rates.",
				Impact:     "Save 15-20% on electricity costs",
				Tokens:     10,
				Difficulty: "Easy",
			})
			break
		}
	}

	alwaysOn := 0
	totalDaily := 0.0
	for _, a := range appliances {
		totalDaily += a.DailyUsage
		if a.HoursPerDay >= 20 {
			alwaysOn++
		}
	}
	if alwaysOn > 1 {
		tips = append(tips, EnergyTip{
			Category:   "Standby Power",
			Tip:        "Unplug devices when not in use. Phantom loads can account for 5-10% of total energy consumption.",
			Impact:     fmt.Sprintf("Save %.1f kWh/day", totalDaily*0.075),
			Tokens:     8,
			Difficulty: "Easy",
		})
	}

	if len(tips) > 3 {
		tips = tips[:3]
	}
	return tips
}

// generateRecommendations gates the upgrade card on any low-efficiency
// appliance; the smart-home card is always offered.
func generateRecommendations(appliances []ApplianceAnalysis) []Recommendation {
	recs := []Recommendation{}

	for _, a := range appliances {
		if a.Efficiency < 60 {
			recs = append(recs, Recommendation{
				Type:             "upgrade",
				Title:            "Energy-Efficient Appliance Upgrades",
				Description:      "Consider upgrading to ENERGY STAR certified appliances",
				PotentialSavings: "20-30% energy reduction",
				Priority:         "high",
			})
			break
		}
	}

	recs = append(recs, Recommendation{
		Type:             "automation",
		Title:            "Smart Home Integration",
		Description:      "Install smart plugs and thermostats for automated energy management",
		PotentialSavings: "10-15% energy reduction",
		Priority:         "medium",
	})

	return recs
}

// EnergyService only wraps the pure analyzer behind a handler.
type EnergyService struct{}

func NewEnergyService() *EnergyService {
	return &EnergyService{}
}

// Analyze handles POST /api/energy/analyze
func (s *EnergyService) Analyze(c *fiber.Ctx) error {
	var req struct {
		Appliances []Appliance `json:"appliances"`
		Location   string      `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Analysis failed",
		})
	}
	if req.Location == "" {
		req.Location = "US"
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"analysis": AnalyzeEnergy(req.Appliances, req.Location),
	})
}
