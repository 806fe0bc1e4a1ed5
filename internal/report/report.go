// Package report renders a forecast into a Markdown document: a cover
// section, a chart summary with positions, houses and aspects, then the
// monthly interpretations.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/astromind-labs/astromind/internal/aspects"
	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/interpreter"
)

// Bulgarian display names used throughout the rendered document.
var planetNames = map[string]string{
	"Sun": "Слънце", "Moon": "Луна", "Mercury": "Меркурий",
	"Venus": "Венера", "Mars": "Марс", "Jupiter": "Юпитер",
	"Saturn": "Сатурн", "Uranus": "Уран", "Neptune": "Нептун",
	"Pluto": "Плутон", "Node": "Възходящ Възел",
}

var signNames = map[string]string{
	"Aries": "Овен", "Taurus": "Телец", "Gemini": "Близнаци",
	"Cancer": "Рак", "Leo": "Лъв", "Virgo": "Дева",
	"Libra": "Везни", "Scorpio": "Скорпион", "Sagittarius": "Стрелец",
	"Capricorn": "Козирог", "Aquarius": "Водолей", "Pisces": "Риби",
}

var aspectNames = map[string]string{
	"conjunction": "съвпад", "sextile": "секстил",
	"square": "квадратура", "trine": "тригон", "opposition": "опозиция",
}

var reportTypeNames = map[string]string{
	"general": "Общ", "health": "Здраве", "career": "Кариера",
	"love": "Любов", "money": "Финанси", "karmic": "Кармичен",
}

// planetOrder fixes the listing order in the summary tables.
var planetOrder = []string{
	"Sun", "Moon", "Mercury", "Venus", "Mars",
	"Jupiter", "Saturn", "Uranus", "Neptune", "Pluto", "Node",
}

// Data is everything one report needs.
type Data struct {
	UserName   string
	BirthDate  string
	BirthTime  string
	BirthPlace string
	ReportType string

	NatalChart   *engine.Chart
	NatalAspects []aspects.Aspect
	Months       []interpreter.MonthSection
}

// Render produces the full Markdown document.
func Render(d Data) string {
	var b strings.Builder

	writeCover(&b, d)
	if d.NatalChart != nil {
		writeSummary(&b, d)
	}
	for _, m := range d.Months {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", m.Month, strings.TrimSpace(m.Text))
	}

	b.WriteString("---\n\n*Докладът е генериран автоматично и има развлекателен характер.*\n")
	return b.String()
}

func writeCover(b *strings.Builder, d Data) {
	b.WriteString("# АСТРОЛОГИЧЕН ДОКЛАД\n\n")
	if d.UserName != "" {
		fmt.Fprintf(b, "**Подготвен за:** %s\n\n", d.UserName)
	}
	if d.BirthDate != "" {
		birth := d.BirthDate
		if d.BirthTime != "" {
			birth += " " + d.BirthTime
		}
		if d.BirthPlace != "" {
			birth += ", " + d.BirthPlace
		}
		fmt.Fprintf(b, "**Рождени данни:** %s\n\n", birth)
	}
	if name, ok := reportTypeNames[d.ReportType]; ok {
		fmt.Fprintf(b, "**Тип доклад:** %s\n\n", name)
	}
	b.WriteString("---\n\n")
}

func writeSummary(b *strings.Builder, d Data) {
	chart := d.NatalChart
	b.WriteString("## Обобщена информация за картата\n\n")

	b.WriteString("### Планетарни позиции\n\n")
	b.WriteString("| Планета | Позиция |\n|---|---|\n")
	for _, name := range planetOrder {
		pos, ok := chart.Planets[name]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "| %s | %s |\n", planetName(name), translateSigns(pos.FormattedPos))
	}
	if chart.Angles.AscendantFormatted != "" {
		fmt.Fprintf(b, "| Асцендент | %s |\n", translateSigns(chart.Angles.AscendantFormatted))
	}
	if chart.Angles.MCFormatted != "" {
		fmt.Fprintf(b, "| MC | %s |\n", translateSigns(chart.Angles.MCFormatted))
	}
	b.WriteString("\n")

	b.WriteString("### Домове\n\n")
	byHouse := planetsByHouse(chart)
	for house := 1; house <= 12; house++ {
		occupants := byHouse[house]
		if len(occupants) == 0 {
			fmt.Fprintf(b, "- %d-%s дом: *празен*\n", house, houseSuffix(house))
			continue
		}
		fmt.Fprintf(b, "- %d-%s дом: %s\n", house, houseSuffix(house), strings.Join(occupants, ", "))
	}
	b.WriteString("\n")

	if len(d.NatalAspects) > 0 {
		b.WriteString("### Аспекти\n\n")
		for _, a := range d.NatalAspects {
			fmt.Fprintf(b, "- %s – %s: %s (орб %.2f°)\n",
				planetName(a.Planet1), planetName(a.Planet2), aspectName(a.Kind), a.Orb)
		}
		b.WriteString("\n")
	}
}

func planetsByHouse(chart *engine.Chart) map[int][]string {
	byHouse := make(map[int][]string)
	names := make([]string, 0, len(chart.Planets))
	for name := range chart.Planets {
		names = append(names, name)
	}
	// Canonical order first, then anything else alphabetically.
	sort.Slice(names, func(i, j int) bool {
		return orderIndex(names[i]) < orderIndex(names[j])
	})
	for _, name := range names {
		pos := chart.Planets[name]
		if pos.House >= 1 && pos.House <= 12 {
			byHouse[pos.House] = append(byHouse[pos.House], planetName(name))
		}
	}
	return byHouse
}

func orderIndex(name string) int {
	for i, n := range planetOrder {
		if n == name {
			return i
		}
	}
	return len(planetOrder)
}

func planetName(name string) string {
	if bg, ok := planetNames[name]; ok {
		return bg
	}
	return name
}

func aspectName(kind aspects.Kind) string {
	if bg, ok := aspectNames[string(kind)]; ok {
		return bg
	}
	return string(kind)
}

// translateSigns rewrites English sign names inside a formatted position
// like "Aries 12°34'".
func translateSigns(formatted string) string {
	for eng, bg := range signNames {
		formatted = strings.ReplaceAll(formatted, eng, bg)
	}
	return formatted
}

// houseSuffix is the Bulgarian ordinal suffix for a house number.
func houseSuffix(n int) string {
	switch {
	case n == 1:
		return "ви"
	case n == 2:
		return "ри"
	case n == 11:
		return "и"
	default:
		return "ти"
	}
}
