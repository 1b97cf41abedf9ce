package activity

// Step is one entry of a built-in routine.
type Step struct {
	Activity string
	Minutes  int
}

// Routine is a named, ordered template of activities.
type Routine struct {
	Key   string
	Name  string
	Steps []Step
}

var routineOrder = []string{"normal", "weekend", "morning", "evening"}

var routines = map[string]Routine{
	"normal": {
		Key:  "normal",
		Name: "Normal Day",
		Steps: []Step{
			{"play", 30}, {"dinner", 20}, {"bath", 15}, {"teeth", 3}, {"story", 10}, {"sleep", 1},
		},
	},
	"weekend": {
		Key:  "weekend",
		Name: "Weekend",
		Steps: []Step{
			{"breakfast", 20}, {"dress", 10}, {"outside", 45}, {"snack", 10}, {"play", 40}, {"dinner", 25},
			{"tv", 20}, {"bath", 15}, {"teeth", 3}, {"story", 15}, {"sleep", 1},
		},
	},
	"morning": {
		Key:  "morning",
		Name: "Morning",
		Steps: []Step{
			{"breakfast", 20}, {"teeth", 3}, {"dress", 10}, {"play", 30},
		},
	},
	"evening": {
		Key:  "evening",
		Name: "Evening",
		Steps: []Step{
			{"dinner", 25}, {"play", 20}, {"bath", 15}, {"teeth", 3}, {"story", 15}, {"sleep", 1},
		},
	},
}

// DefaultRoutine is the routine installed on first run.
const DefaultRoutine = "normal"

// LookupRoutine returns a copy of the built-in routine with the given key.
func LookupRoutine(key string) (Routine, bool) {
	r, ok := routines[key]
	if !ok {
		return Routine{}, false
	}
	steps := make([]Step, len(r.Steps))
	copy(steps, r.Steps)
	r.Steps = steps
	return r, true
}

// RoutineKeys lists the built-in routine keys in declaration order.
func RoutineKeys() []string {
	out := make([]string, len(routineOrder))
	copy(out, routineOrder)
	return out
}
