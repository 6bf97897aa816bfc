package model

// ItemString is one localized display-text row from a StrSheet_Item sheet.
// Text is never empty: collectors drop rows with an empty string attribute.
type ItemString struct {
	Language   string
	TemplateID int64
	Text       string
	ToolTip    string
}

// ItemTemplate holds the structural attributes of an item definition,
// keyed uniquely by TemplateID. Optional requirements are nil when the
// source sheet omits them.
type ItemTemplate struct {
	TemplateID        int64
	IconSuffix        string
	RareGrade         int32
	RequiredLevel     *int32
	RequiredClass     *string
	RequiredGender    *string
	RequiredRace      *string
	Tradable          bool
	WarehouseStorable bool
}

// ItemConversion maps a generic template to one variant-specific
// ("fixed") template, optionally filtered by class/gender/race.
type ItemConversion struct {
	ItemTemplateID      int64
	FixedItemTemplateID int64
	Class               *string
	Gender              *string
	Race                *string
}
