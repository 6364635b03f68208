package universe

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "orbitarium-server/internal/shared/errors"

	"orbitarium-server/internal/orbit"
)

// PresetOrbit is the file-facing orbital element set. Angles are degrees in
// preset files since that is how published ephemeris tables quote them.
type PresetOrbit struct {
	Eccentricity    float64 `yaml:"eccentricity"`
	Periapsis       float64 `yaml:"periapsis"`
	InclinationDeg  float64 `yaml:"inclination_deg"`
	ArgPeriapsisDeg float64 `yaml:"arg_periapsis_deg"`
	LongAscNodeDeg  float64 `yaml:"long_asc_node_deg"`
	MeanAnomalyDeg  float64 `yaml:"mean_anomaly_deg"`
}

// PresetBody is one node of a preset hierarchy.
type PresetBody struct {
	Name       string       `yaml:"name"`
	Mass       float64      `yaml:"mass"`
	Radius     float64      `yaml:"radius"`
	Color      Color        `yaml:"color"`
	Orbit      *PresetOrbit `yaml:"orbit,omitempty"`
	Satellites []PresetBody `yaml:"satellites,omitempty"`
}

// Preset is a loadable universe description.
type Preset struct {
	G      float64      `yaml:"g"`
	Bodies []PresetBody `yaml:"bodies"`
}

// LoadPreset reads a YAML preset file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to read preset file", err)
	}
	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, apperrors.WrapValidation("failed to parse preset file", err)
	}
	return &preset, nil
}

// Build constructs a fresh universe from the preset.
func (p *Preset) Build() (*Universe, error) {
	u := New()
	if p.G > 0 {
		u.g = p.G
	}
	for i := range p.Bodies {
		if err := u.addPresetBody(&p.Bodies[i], nil); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (u *Universe) addPresetBody(spec *PresetBody, parentID *ID) error {
	body := &Body{
		Name:   spec.Name,
		Mass:   spec.Mass,
		Radius: spec.Radius,
		Color:  spec.Color,
	}
	if body.Color.A == 0 {
		body.Color.A = 1
	}
	if spec.Orbit != nil {
		// Mu is a placeholder here; AddBody rebinds it to g * parent mass.
		body.Orbit = orbit.New(
			spec.Orbit.Eccentricity,
			spec.Orbit.Periapsis,
			radians(spec.Orbit.InclinationDeg),
			radians(spec.Orbit.ArgPeriapsisDeg),
			radians(spec.Orbit.LongAscNodeDeg),
			radians(spec.Orbit.MeanAnomalyDeg),
			1,
		)
	}

	id, err := u.AddBody(body, parentID)
	if err != nil {
		return err
	}
	for i := range spec.Satellites {
		if err := u.addPresetBody(&spec.Satellites[i], &id); err != nil {
			return err
		}
	}
	return nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DefaultPreset is the built-in solar system: the Sun, the eight planets,
// the major moons, Ceres, and the Pluto and Eris systems. Elements are
// J2000 osculating values from published ephemeris tables, masses and radii
// from standard references.
func DefaultPreset() *Preset {
	return &Preset{
		G: DefaultG,
		Bodies: []PresetBody{{
			Name:   "Sun",
			Mass:   1.989e30,
			Radius: 6.957e8,
			Color:  Color{R: 1, G: 0.85, B: 0.4, A: 1},
			Satellites: []PresetBody{
				{
					Name: "Mercury", Mass: 3.301e23, Radius: 2.4397e6,
					Color: Color{R: 0.6, G: 0.58, B: 0.55, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.2056, Periapsis: 4.600e10,
						InclinationDeg: 7.005, ArgPeriapsisDeg: 29.124,
						LongAscNodeDeg: 48.331, MeanAnomalyDeg: 174.796,
					},
				},
				{
					Name: "Venus", Mass: 4.867e24, Radius: 6.0518e6,
					Color: Color{R: 0.9, G: 0.78, B: 0.55, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.0068, Periapsis: 1.0748e11,
						InclinationDeg: 3.394, ArgPeriapsisDeg: 54.884,
						LongAscNodeDeg: 76.680, MeanAnomalyDeg: 50.115,
					},
				},
				{
					Name: "Earth", Mass: 5.972e24, Radius: 6.371e6,
					Color: Color{R: 0.25, G: 0.45, B: 0.85, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.0167, Periapsis: 1.47095e11,
						InclinationDeg: 0.00005, ArgPeriapsisDeg: 114.208,
						LongAscNodeDeg: 348.739, MeanAnomalyDeg: 358.617,
					},
					Satellites: []PresetBody{{
						Name: "Luna", Mass: 7.342e22, Radius: 1.7374e6,
						Color: Color{R: 0.7, G: 0.7, B: 0.7, A: 1},
						Orbit: &PresetOrbit{
							Eccentricity: 0.0549, Periapsis: 3.633e8,
							InclinationDeg: 5.145, ArgPeriapsisDeg: 318.15,
							LongAscNodeDeg: 125.08, MeanAnomalyDeg: 115.365,
						},
					}},
				},
				{
					Name: "Mars", Mass: 6.417e23, Radius: 3.3895e6,
					Color: Color{R: 0.8, G: 0.42, B: 0.25, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.0934, Periapsis: 2.0665e11,
						InclinationDeg: 1.850, ArgPeriapsisDeg: 286.502,
						LongAscNodeDeg: 49.558, MeanAnomalyDeg: 19.387,
					},
					Satellites: []PresetBody{
						{
							Name: "Phobos", Mass: 1.0659e16, Radius: 1.1267e4,
							Color: Color{R: 0.45, G: 0.4, B: 0.38, A: 1},
							Orbit: &PresetOrbit{
								Eccentricity: 0.0151, Periapsis: 9.234e6,
								InclinationDeg: 1.093,
							},
						},
						{
							Name: "Deimos", Mass: 1.4762e15, Radius: 6.2e3,
							Color: Color{R: 0.5, G: 0.46, B: 0.42, A: 1},
							Orbit: &PresetOrbit{
								Eccentricity: 0.00033, Periapsis: 2.3455e7,
								InclinationDeg: 0.93,
							},
						},
					},
				},
				{
					Name: "Ceres", Mass: 9.38e20, Radius: 4.73e5,
					Color: Color{R: 0.55, G: 0.55, B: 0.5, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.0758, Periapsis: 3.826e11,
						InclinationDeg: 10.594, ArgPeriapsisDeg: 73.597,
						LongAscNodeDeg: 80.305, MeanAnomalyDeg: 77.372,
					},
				},
				{
					Name: "Jupiter", Mass: 1.898e27, Radius: 6.9911e7,
					Color: Color{R: 0.8, G: 0.65, B: 0.5, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.0489, Periapsis: 7.4052e11,
						InclinationDeg: 1.303, ArgPeriapsisDeg: 273.867,
						LongAscNodeDeg: 100.464, MeanAnomalyDeg: 20.020,
					},
				},
				{
					Name: "Saturn", Mass: 5.683e26, Radius: 5.8232e7,
					Color: Color{R: 0.85, G: 0.75, B: 0.55, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.0565, Periapsis: 1.3525e12,
						InclinationDeg: 2.485, ArgPeriapsisDeg: 339.392,
						LongAscNodeDeg: 113.665, MeanAnomalyDeg: 317.020,
					},
				},
				{
					Name: "Uranus", Mass: 8.681e25, Radius: 2.5362e7,
					Color: Color{R: 0.6, G: 0.8, B: 0.85, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.0457, Periapsis: 2.7412e12,
						InclinationDeg: 0.773, ArgPeriapsisDeg: 96.999,
						LongAscNodeDeg: 74.006, MeanAnomalyDeg: 142.239,
					},
				},
				{
					Name: "Neptune", Mass: 1.024e26, Radius: 2.4622e7,
					Color: Color{R: 0.3, G: 0.4, B: 0.9, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.0113, Periapsis: 4.4443e12,
						InclinationDeg: 1.770, ArgPeriapsisDeg: 276.336,
						LongAscNodeDeg: 131.784, MeanAnomalyDeg: 256.228,
					},
				},
				{
					Name: "Pluto", Mass: 1.303e22, Radius: 1.1883e6,
					Color: Color{R: 0.75, G: 0.68, B: 0.6, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.2488, Periapsis: 4.4369e12,
						InclinationDeg: 17.16, ArgPeriapsisDeg: 113.834,
						LongAscNodeDeg: 110.299, MeanAnomalyDeg: 14.53,
					},
					Satellites: []PresetBody{{
						Name: "Charon", Mass: 1.586e21, Radius: 6.06e5,
						Color: Color{R: 0.6, G: 0.6, B: 0.6, A: 1},
						Orbit: &PresetOrbit{
							Eccentricity: 0.0002, Periapsis: 1.9587e7,
							InclinationDeg: 0.08,
						},
					}},
				},
				{
					Name: "Eris", Mass: 1.66e22, Radius: 1.163e6,
					Color: Color{R: 0.85, G: 0.85, B: 0.88, A: 1},
					Orbit: &PresetOrbit{
						Eccentricity: 0.4361, Periapsis: 5.725e12,
						InclinationDeg: 44.04, ArgPeriapsisDeg: 151.639,
						LongAscNodeDeg: 35.951, MeanAnomalyDeg: 205.989,
					},
					Satellites: []PresetBody{{
						Name: "Dysnomia", Mass: 8.2e19, Radius: 3.08e5,
						Color: Color{R: 0.5, G: 0.5, B: 0.55, A: 1},
						Orbit: &PresetOrbit{
							Eccentricity: 0.0062, Periapsis: 3.713e7,
						},
					}},
				},
			},
		}},
	}
}
