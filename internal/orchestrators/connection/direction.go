package connection

import "strings"

var opposites = map[string]string{
	"north":     "south",
	"south":     "north",
	"east":      "west",
	"west":      "east",
	"up":        "down",
	"down":      "up",
	"northeast": "southwest",
	"southwest": "northeast",
	"northwest": "southeast",
	"southeast": "northwest",
}

// ReverseDirection returns the opposite compass label. Labels without a
// known opposite, such as "behind the bookshelf", are returned unchanged.
func ReverseDirection(direction string) string {
	if rev, ok := opposites[strings.ToLower(direction)]; ok {
		return rev
	}
	return direction
}

// ImplicitDirection is the label given to hierarchy-derived exits
func ImplicitDirection(destinationName string) string {
	return "to " + strings.ToLower(destinationName)
}
