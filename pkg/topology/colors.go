package topology

// Palette is the fixed set of stage colors.
var Palette = []string{
	"#0DADEA", "#FF9500", "#8BC34A", "#E91E63", "#9C27B0",
	"#00BFA5", "#FFC107", "#3F51B5", "#F4511E", "#607D8B",
	"#4CAF50", "#D81B60", "#03A9F4", "#FF7043", "#7E57C2",
	"#26A69A", "#C0CA33", "#5C6BC0", "#EC407A", "#8D6E63",
}

// AssignColors maps every name to a palette color.
//
// Persisted assignments for names still present are kept as is. With nothing
// persisted, colors are spread evenly across the palette in the given order.
// Otherwise each new name takes the least used palette color, earliest in the
// palette on ties. The result only contains the given names.
func AssignColors(names []string, persisted map[string]string) map[string]string {
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out
	}

	usage := make(map[string]int, len(Palette))
	for _, n := range names {
		if c := persisted[n]; c != "" {
			out[n] = c
			usage[c]++
		}
	}

	if len(out) == 0 {
		step := float64(len(Palette)) / float64(len(names))
		for i, n := range names {
			out[n] = Palette[int(float64(i)*step)%len(Palette)]
		}
		return out
	}

	for _, n := range names {
		if _, ok := out[n]; ok {
			continue
		}
		c := leastUsed(usage)
		out[n] = c
		usage[c]++
	}
	return out
}

func leastUsed(usage map[string]int) string {
	best := Palette[0]
	for _, c := range Palette[1:] {
		if usage[c] < usage[best] {
			best = c
		}
	}
	return best
}
