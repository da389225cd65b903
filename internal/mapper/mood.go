package mapper

// MoodLabel names the energy/valence quadrant of params:
//
//   - high energy, high valence: "Upbeat Party"
//   - high energy, low valence:  "Intense & Dark"
//   - low energy, high valence:  "Chill & Happy"
//   - low energy, low valence:   "Reflective & Melancholy"
//
// Acousticness above 0.6 appends " (Acoustic)".
func MoodLabel(params MusicParameters) string {
	highEnergy := params.Energy > 0.6
	highValence := params.Valence > 0.5

	var name string
	switch {
	case highEnergy && highValence:
		name = "Upbeat Party"
	case highEnergy:
		name = "Intense & Dark"
	case highValence:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if params.Acousticness > 0.6 {
		return name + " (Acoustic)"
	}
	return name
}

// MergeMood overlays override on base field by field. Either may be nil;
// the result is a new value.
func MergeMood(base, override *MoodSettings) *MoodSettings {
	if base == nil && override == nil {
		return nil
	}
	out := &MoodSettings{}
	for _, m := range []*MoodSettings{base, override} {
		if m == nil {
			continue
		}
		if m.Energy != nil {
			out.Energy = copyFloat(m.Energy)
		}
		if m.Valence != nil {
			out.Valence = copyFloat(m.Valence)
		}
		if m.Tempo != nil {
			out.Tempo = copyFloat(m.Tempo)
		}
		if m.Instrumentalness != nil {
			out.Instrumentalness = copyFloat(m.Instrumentalness)
		}
		if m.Acousticness != nil {
			out.Acousticness = copyFloat(m.Acousticness)
		}
	}
	return out
}

func copyFloat(f *float64) *float64 {
	v := *f
	return &v
}
