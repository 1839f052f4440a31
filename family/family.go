// Package family enumerates the built-in game font families and maps each
// one to its descriptor file and texture-sheet naming template.
package family

import (
	"fmt"
	"sort"
)

// Family identifies one font face at one native point size.
type Family int

// Built-in families.
const (
	Undefined Family = iota
	Axis96
	Axis12
	Axis14
	Axis18
	Axis36
	Jupiter16
	Jupiter20
	Jupiter23
	Jupiter45
	Jupiter46
	Jupiter90
	JupiterNumeric45
	JupiterNumeric90
	Meidinger16
	Meidinger20
	Meidinger40
	MiedingerMid10
	MiedingerMid12
	MiedingerMid14
	MiedingerMid18
	MiedingerMid36
	TrumpGothic184
	TrumpGothic23
	TrumpGothic34
	TrumpGothic68
)

var names = map[Family]string{
	Undefined:        "Undefined",
	Axis96:           "Axis96",
	Axis12:           "Axis12",
	Axis14:           "Axis14",
	Axis18:           "Axis18",
	Axis36:           "Axis36",
	Jupiter16:        "Jupiter16",
	Jupiter20:        "Jupiter20",
	Jupiter23:        "Jupiter23",
	Jupiter45:        "Jupiter45",
	Jupiter46:        "Jupiter46",
	Jupiter90:        "Jupiter90",
	JupiterNumeric45: "JupiterNumeric45",
	JupiterNumeric90: "JupiterNumeric90",
	Meidinger16:      "Meidinger16",
	Meidinger20:      "Meidinger20",
	Meidinger40:      "Meidinger40",
	MiedingerMid10:   "MiedingerMid10",
	MiedingerMid12:   "MiedingerMid12",
	MiedingerMid14:   "MiedingerMid14",
	MiedingerMid18:   "MiedingerMid18",
	MiedingerMid36:   "MiedingerMid36",
	TrumpGothic184:   "TrumpGothic184",
	TrumpGothic23:    "TrumpGothic23",
	TrumpGothic34:    "TrumpGothic34",
	TrumpGothic68:    "TrumpGothic68",
}

func (f Family) String() string {
	if s, ok := names[f]; ok {
		return s
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// Parse returns the family with the given String name.
func Parse(name string) (Family, bool) {
	for f, s := range names {
		if s == name && f != Undefined {
			return f, true
		}
	}
	return Undefined, false
}

// Files names the descriptor and the texture sheets of one family.
type Files struct {
	// Descriptor is the path of the fcsv0100 descriptor.
	Descriptor string

	// TextureTemplate is a fmt template taking the 1-based sheet number.
	TextureTemplate string
}

// TexturePath formats the path of the sheet with the given 0-based index.
func (f Files) TexturePath(index int) string {
	return fmt.Sprintf(f.TextureTemplate, index+1)
}

// Table maps families to their files. A Table is treated as immutable once
// handed to a loader.
type Table map[Family]Files

// Families returns the families of t in ascending order.
func (t Table) Families() []Family {
	out := make([]Family, 0, len(t))
	for f := range t {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

const (
	mainSheets  = "common/font/font%d.tex"
	lobbySheets = "common/font/font_lobby%d.tex"
)

// DefaultTable returns the table of the built-in game fonts.
func DefaultTable() Table {
	main := func(name string) Files {
		return Files{Descriptor: "common/font/" + name + ".fdt", TextureTemplate: mainSheets}
	}
	lobby := func(name string) Files {
		return Files{Descriptor: "common/font/" + name + "_lobby.fdt", TextureTemplate: lobbySheets}
	}
	return Table{
		Axis96:           main("AXIS_96"),
		Axis12:           main("AXIS_12"),
		Axis14:           main("AXIS_14"),
		Axis18:           main("AXIS_18"),
		Axis36:           lobby("AXIS_36"),
		Jupiter16:        main("Jupiter_16"),
		Jupiter20:        main("Jupiter_20"),
		Jupiter23:        main("Jupiter_23"),
		Jupiter45:        lobby("Jupiter_45"),
		Jupiter46:        lobby("Jupiter_46"),
		Jupiter90:        lobby("Jupiter_90"),
		JupiterNumeric45: main("Jupiter_45"),
		JupiterNumeric90: main("Jupiter_90"),
		Meidinger16:      main("Meidinger_16"),
		Meidinger20:      main("Meidinger_20"),
		Meidinger40:      lobby("Meidinger_40"),
		MiedingerMid10:   main("MiedingerMid_10"),
		MiedingerMid12:   main("MiedingerMid_12"),
		MiedingerMid14:   main("MiedingerMid_14"),
		MiedingerMid18:   main("MiedingerMid_18"),
		MiedingerMid36:   lobby("MiedingerMid_36"),
		TrumpGothic184:   main("TrumpGothic_184"),
		TrumpGothic23:    main("TrumpGothic_23"),
		TrumpGothic34:    main("TrumpGothic_34"),
		TrumpGothic68:    lobby("TrumpGothic_68"),
	}
}
