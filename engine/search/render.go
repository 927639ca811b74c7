package search

import (
	"fmt"
	"strconv"
	"strings"
)

// NoResultsMessage is returned when a search matches nothing.
const NoResultsMessage = "❌ No se encontraron vehículos que coincidan con los criterios de búsqueda."

// FormatResults renders ranked results as the markdown block the sales
// agents send to customers. At most maxDisplay cars are shown in full.
func FormatResults(results []Result, maxDisplay int) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	if maxDisplay <= 0 {
		maxDisplay = 5
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 **Encontré %d vehículos excelentes para ti:**\n\n", len(results))

	shown := results
	if len(shown) > maxDisplay {
		shown = shown[:maxDisplay]
	}
	for i, car := range shown {
		fmt.Fprintf(&b, "**%d. %d %s %s** (%s)\n", i+1, car.Year, car.Make, car.Model, strings.Join(car.BodyStyles, ", "))
		fmt.Fprintf(&b, "   🎨 Color: %s | 📏 %s km | 💰 €%s\n", car.Color, thousands(car.Mileage), thousands(car.Price))
		fmt.Fprintf(&b, "   ⛽ %s | ⭐ %d/5 estrellas | 🧳 %dL maletero\n", car.FuelType, car.SafetyRating, car.TrunkSpaceLiters)
		fmt.Fprintf(&b, "   ✨ %s\n", featuresPreview(car.Features))
		fmt.Fprintf(&b, "   📍 Ubicación: %s | 🏆 Condición: %s\n", car.Location, car.Condition)
		if len(car.MatchReasons) > 0 {
			reasons := car.MatchReasons
			if len(reasons) > 2 {
				reasons = reasons[:2]
			}
			fmt.Fprintf(&b, "   🎯 **Por qué es perfecto:** %s\n", strings.Join(reasons, ", "))
		}
		fmt.Fprintf(&b, "   📋 VIN: `%s`\n\n", car.VIN)
	}

	if len(results) > maxDisplay {
		fmt.Fprintf(&b, "... y %d opciones más disponibles.\n\n", len(results)-maxDisplay)
	}
	b.WriteString("💡 **¿Te interesa alguno de estos vehículos? ¡Puedo darte más detalles o programar una prueba de manejo!**")
	return b.String()
}

// featuresPreview shows the first three features plus a count of the rest.
func featuresPreview(features []string) string {
	if len(features) <= 3 {
		return strings.Join(features, ", ")
	}
	return fmt.Sprintf("%s y %d más", strings.Join(features[:3], ", "), len(features)-3)
}

// thousands formats an integer with "." as the thousands separator, the
// convention Spanish customers expect.
func thousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		return "-" + out
	}
	return out
}
