package portal

import (
	"fmt"
	"strings"
)

// View is one of the portal screens.
type View int

const (
	Landing View = iota
	Government
	Business
	Public
	Compare
)

var viewNames = map[View]string{
	Landing:    "landing",
	Government: "government",
	Business:   "business",
	Public:     "public",
	Compare:    "compare",
}

// Views lists every view in menu order.
func Views() []View {
	return []View{Landing, Government, Business, Public, Compare}
}

func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// ParseView resolves a view by its name, ignoring case.
func ParseView(name string) (View, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for view, candidate := range viewNames {
		if candidate == name {
			return view, nil
		}
	}
	return Landing, fmt.Errorf("unknown view %q", name)
}
