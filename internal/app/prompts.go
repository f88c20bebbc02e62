package app

import (
	"fmt"
	"strconv"
	"strings"

	"trip_planner/internal/domain"
)

const (
	itinerarySystemPrompt = "Eres un asistente útil para planificar viajes."

	noneF = "Ninguna"
	noneM = "Ninguno"
)

const itineraryShape = `{
    "dia1": {
        "fecha": "YYYY-MM-DD",
        "actividades": [
            {
                "hora": "HH:MM",
                "actividad": "Descripción de la actividad",
                "ubicación": "Lugar de la actividad"
            }
        ],
        "alojamiento": "Nombre del hotel recomendado",
        "transporte": "Detalles sobre transporte si aplica"
    },
    "dia2": { ... },
    ...
}`

const fence = "```"

func or(p *string, def string) string {
	if s := strings.TrimSpace(deref(p)); s != "" {
		return s
	}
	return def
}

func orStr(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}

// RenderItineraryPrompt is deterministic for a given input. Absent optional
// values render as Ninguna/Ninguno and absent lists as empty.
func RenderItineraryPrompt(p domain.TravelPreferences, b domain.EnrichmentBundle) string {
	var sb strings.Builder
	w := func(format string, args ...any) { fmt.Fprintf(&sb, format, args...) }

	w("Eres un asistente de planificación de viajes experto. Basándote en la información proporcionada, " +
		"genera un itinerario detallado para el viaje. El itinerario debe estar organizado por días e incluir " +
		"recomendaciones de actividades, lugares para visitar, opciones de alojamiento y transporte. " +
		"La respuesta **debe ser únicamente** un objeto JSON con la siguiente estructura:\n\n")
	w("%s\n\n", itineraryShape)

	w("**Información del usuario:**\n\n")
	w("**Descripción del Viaje:**\n%s\n\n", or(p.Description, noneF))

	w("**Fechas de Viaje:**\n- Inicio: %s\n- Fin: %s\n\n", p.TravelDates.StartDate, p.TravelDates.EndDate)

	d := p.DestinationPreferences
	w("**Preferencias de Destino:**\n")
	w("- País: %s\n", d.CountryName)
	w("- Tipo de destino: %s\n", d.Type)
	w("- Región preferida: %s\n", or(d.Region, noneF))
	w("- Clima deseado: %s\n\n", or(d.Climate, noneM))

	w("**Presupuesto:**\n- Total: %s\n- Distribución: %s\n\n",
		strconv.FormatFloat(p.Budget.Total, 'f', -1, 64), or(p.Budget.Allocation, noneF))

	w("**Intereses y Actividades:**\n- %s\n\n", strings.Join(p.Interests, ", "))

	a := p.AccommodationPreferences
	w("**Preferencias de Alojamiento:**\n")
	w("- Tipo: %s\n", a.Type)
	w("- Nivel de lujo: %s\n", or(a.Stars, noneM))
	w("- Ubicación preferida: %s\n", or(a.Location, noneF))
	w("- Servicios específicos: %s\n\n", strings.Join(a.Amenities, ", "))

	t := p.TransportPreferences
	w("**Transporte:**\n")
	w("- Medio preferido: %s\n", t.PreferredMode)
	w("- Preferencias de movilidad: %s\n", or(t.Mobility, noneF))
	w("- Necesidades especiales: %s\n\n", or(t.SpecialNeeds, noneF))

	f := p.FoodPreferences
	w("**Comida y Dieta:**\n")
	w("- Tipos de cocina favoritas: %s\n", strings.Join(f.Cuisine, ", "))
	w("- Restricciones dietéticas: %s\n", or(f.DietaryRestrictions, noneF))
	w("- Experiencias culinarias: %s\n\n", strings.Join(f.CulinaryExperiences, ", "))

	c := p.TravelCompanion
	w("**Compañía de Viaje:**\n")
	w("- Tipo de viaje: %s\n", c.Type)
	w("- Edades de los viajeros: %s\n", joinInts(c.Ages))
	w("- Requisitos especiales: %s\n\n", or(c.SpecialRequirements, noneM))

	l := p.ActivityLevel
	w("**Nivel de Actividad:**\n")
	w("- Ritmo del viaje: %s\n", l.Pace)
	w("- Preferencia de tiempo libre: %s\n\n", or(l.FreeTimePreference, noneF))

	w("**Otros Aspectos Importantes:**\n- %s\n\n", or(p.AdditionalPreferences, noneM))

	if s := ActivityDigest(b); s != "" {
		w("%s\n", s)
	}
	if s := HotelDigest(b); s != "" {
		w("%s\n", s)
	}

	w("**Instrucciones Adicionales:**\n")
	w("- La respuesta debe ser únicamente el JSON sin ningún otro texto ni formateo, sin incluir %sjson ni %s.\n", fence, fence)
	w("- Asegúrate de que cada día incluya recomendaciones de alojamiento basadas en las opciones de hoteles proporcionadas.\n")
	return sb.String()
}

// ActivityDigest lists activities per city; "" when there are no cities.
func ActivityDigest(b domain.EnrichmentBundle) string {
	if b.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Aquí tienes algunas actividades recomendadas para las ciudades principales:\n")
	for _, c := range b.Cities {
		fmt.Fprintf(&sb, "\n**%s:**\n", orStr(c.City, c.LookupCode))
		for i, a := range c.Activities {
			fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, a.Title, a.Price)
		}
	}
	return sb.String()
}

// HotelDigest lists hotels per city; "" when there are no cities.
func HotelDigest(b domain.EnrichmentBundle) string {
	if b.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Aquí tienes algunos hoteles recomendados para las ciudades principales:\n")
	for _, c := range b.Cities {
		fmt.Fprintf(&sb, "\n**%s:**\n", orStr(c.City, c.LookupCode))
		for i, h := range c.Hotels {
			fmt.Fprintf(&sb, "%d. %s - %s - Rating: %s\n", i+1, h.Name, h.Address, h.Rating)
		}
	}
	return sb.String()
}
