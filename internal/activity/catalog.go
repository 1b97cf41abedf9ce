package activity

import "strings"

// Activity is the display metadata for one kind of scheduled activity.
type Activity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	ColorLight string `json:"colorLight"`
	Gradient   string `json:"gradient"`
}

// catalogOrder is the declaration order of the built-in activities.
var catalogOrder = []string{
	"play", "dinner", "bath", "story", "sleep", "breakfast", "lunch", "outside", "quiet",
	"snack", "tv", "teeth", "music", "dress", "nap", "potty", "clean", "reading",
}

var catalog = map[string]Activity{
	"play":      newActivity("play", "PLAY", "🧸", "#22c55e", "#4ade80", "#16a34a"),
	"dinner":    newActivity("dinner", "DINNER", "🍽️", "#f97316", "#fb923c", "#ea580c"),
	"bath":      newActivity("bath", "BATH", "🛁", "#3b82f6", "#60a5fa", "#2563eb"),
	"story":     newActivity("story", "STORY", "📚", "#a855f7", "#c084fc", "#9333ea"),
	"sleep":     newActivity("sleep", "SLEEP", "🌙", "#6366f1", "#818cf8", "#4f46e5"),
	"breakfast": newActivity("breakfast", "BREAKFAST", "🥣", "#eab308", "#facc15", "#ca8a04"),
	"lunch":     newActivity("lunch", "LUNCH", "🥪", "#f59e0b", "#fbbf24", "#d97706"),
	"outside":   newActivity("outside", "OUTSIDE", "🌳", "#84cc16", "#a3e635", "#65a30d"),
	"quiet":     newActivity("quiet", "QUIET TIME", "🎨", "#06b6d4", "#22d3ee", "#0891b2"),
	"snack":     newActivity("snack", "SNACK", "🍎", "#ec4899", "#f472b6", "#db2777"),
	"tv":        newActivity("tv", "TV TIME", "📺", "#64748b", "#94a3b8", "#475569"),
	"teeth":     newActivity("teeth", "BRUSH TEETH", "🦷", "#14b8a6", "#2dd4bf", "#0d9488"),
	"music":     newActivity("music", "MUSIC", "🎵", "#f43f5e", "#fb7185", "#e11d48"),
	"dress":     newActivity("dress", "GET DRESSED", "👕", "#8b5cf6", "#a78bfa", "#7c3aed"),
	"nap":       newActivity("nap", "NAP", "😴", "#7c3aed", "#a78bfa", "#6d28d9"),
	"potty":     newActivity("potty", "POTTY", "🚽", "#0ea5e9", "#38bdf8", "#0284c7"),
	"clean":     newActivity("clean", "CLEAN UP", "🧹", "#10b981", "#34d399", "#059669"),
	"reading":   newActivity("reading", "READING", "📖", "#8b5cf6", "#a78bfa", "#7c3aed"),
}

func newActivity(id, name, icon, color, light, dark string) Activity {
	return Activity{
		ID:         id,
		Name:       name,
		Icon:       icon,
		Color:      color,
		ColorLight: light,
		Gradient:   gradient(color, dark),
	}
}

func gradient(from, to string) string {
	return "linear-gradient(135deg, " + from + " 0%, " + to + " 100%)"
}

// Lookup returns the catalog entry for id. When id is not in the catalog it
// returns a synthesized fallback and false.
func Lookup(id string) (Activity, bool) {
	if a, ok := catalog[id]; ok {
		return a, true
	}
	return Activity{
		ID:         id,
		Name:       strings.ToUpper(id),
		Icon:       "❓",
		Color:      "#6b7280",
		ColorLight: "#9ca3af",
		Gradient:   gradient("#6b7280", "#4b5563"),
	}, false
}

// Resolve always returns an Activity for id, synthesizing one for unknown ids.
func Resolve(id string) Activity {
	a, _ := Lookup(id)
	return a
}

// IDs returns the catalog ids in declaration order.
func IDs() []string {
	out := make([]string, len(catalogOrder))
	copy(out, catalogOrder)
	return out
}
