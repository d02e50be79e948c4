package sim

// BodyPreset and CraftPreset define a named starting configuration loaded by
// reset() (§6). Presets are external-collaborator concern in the strict
// sense (body initialization is out of scope per §1) but a handful of named
// presets ship here because the control API (§10.2) needs something to
// reset to.
type BodyPreset struct {
	Name     string
	Position Vector2D
	Velocity Vector2D
	Mass     float64
	Radius   float64
}

type CraftPreset struct {
	ParentName string
	Altitude   float64
	Angle      float64
}

type Preset struct {
	Name   string
	Bodies []BodyPreset
	Crafts []CraftPreset
}

// Presets is the set of named configurations the control API's reset route
// can select from. "sol-terra" and "sol-ember-terra" are the two presets exercised
// by the end-to-end scenarios in §8.
var Presets = map[string]Preset{
	"sol-terra": {
		Name: "sol-terra",
		Bodies: []BodyPreset{
			{Name: "Sol", Position: Vector2D{0, 0}, Velocity: Vector2D{0, 0}, Mass: 1000, Radius: 80},
			{Name: "Terra", Position: Vector2D{600, 0}, Velocity: Vector2D{0, orbitalSpeed(1000, 600)}, Mass: 50, Radius: 25},
		},
	},
	"sol-ember-terra": {
		Name: "sol-ember-terra",
		Bodies: []BodyPreset{
			{Name: "Sol", Position: Vector2D{0, 0}, Velocity: Vector2D{0, 0}, Mass: 1000, Radius: 80},
			{Name: "Ember", Position: Vector2D{300, 0}, Velocity: Vector2D{0, orbitalSpeed(1000, 300)}, Mass: 20, Radius: 15},
			{Name: "Terra", Position: Vector2D{600, 0}, Velocity: Vector2D{0, orbitalSpeed(1000, 600)}, Mass: 50, Radius: 25},
		},
		Crafts: []CraftPreset{
			{ParentName: "Ember", Altitude: 5, Angle: 0},
		},
	},
}
