package dark

// ElementType is the semantic role a color plays in a themed article. It
// selects the remapping applied to the color in dark mode.
type ElementType int

const (
	TypeOther ElementType = iota
	TypeHeading
	TypeBody
	TypeBackground
	TypeTable
	TypeTableText
	TypeBlockquote
	TypeBlockquoteText
	TypeCode
	TypeCodeText
	TypeDecorativeDark
	TypeVibrant
	TypeSelection
	TypeSelectionText
)

var typeNames = [...]string{
	TypeOther:          "other",
	TypeHeading:        "heading",
	TypeBody:           "body",
	TypeBackground:     "background",
	TypeTable:          "table",
	TypeTableText:      "table-text",
	TypeBlockquote:     "blockquote",
	TypeBlockquoteText: "blockquote-text",
	TypeCode:           "code",
	TypeCodeText:       "code-text",
	TypeDecorativeDark: "decorative-dark",
	TypeVibrant:        "vibrant-protected",
	TypeSelection:      "selection",
	TypeSelectionText:  "selection-text",
}

// ElementTypes returns all element types in declaration order.
func ElementTypes() []ElementType {
	types := make([]ElementType, len(typeNames))
	for i := range typeNames {
		types[i] = ElementType(i)
	}
	return types
}

func (t ElementType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "ElementType(?)"
	}
	return typeNames[t]
}

// IsText reports types which have a dedicated foreground band.
func (t ElementType) IsText() bool {
	switch t {
	case TypeTableText, TypeBlockquoteText, TypeCodeText, TypeSelectionText:
		return true
	}
	return false
}

// Classification is the result of classifying a single color use.
type Classification struct {
	Type ElementType
	// Text is set for foreground colors, which are retargeted by luminance
	// rather than remapped through the lightness table.
	Text bool
}

func (c Classification) String() string {
	if c.Text && !c.Type.IsText() {
		return c.Type.String() + " (text)"
	}
	return c.Type.String()
}
