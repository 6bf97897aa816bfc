package sheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/teralab/backoffice/internal/model"
)

// CollectItemStrings turns StrSheet_Item elements into ItemString
// records tagged with language. Elements whose string attribute is empty
// are dropped; encounter order is preserved.
func CollectItemStrings(elems []Element, language string) ([]model.ItemString, error) {
	out := make([]model.ItemString, 0, len(elems))
	for _, el := range elems {
		text, _ := el.attr("string")
		if text == "" {
			continue
		}
		id, err := templateID(el, "id")
		if err != nil {
			return nil, err
		}
		toolTip, _ := el.attr("toolTip")
		out = append(out, model.ItemString{
			Language:   language,
			TemplateID: id,
			Text:       text,
			ToolTip:    toolTip,
		})
	}
	return out, nil
}

// CollectItemTemplates turns ItemData elements into normalized
// ItemTemplate records keyed by template id. Duplicate ids overwrite
// earlier records: with files loaded in lexical order, the last file to
// define an id wins. The result is sorted by id.
func CollectItemTemplates(elems []Element) ([]model.ItemTemplate, error) {
	byID := make(map[int64]model.ItemTemplate, len(elems))
	for _, el := range elems {
		id, err := templateID(el, "id")
		if err != nil {
			return nil, err
		}

		icon, _ := el.attr("icon")
		rareGrade, err := intAttr(el, "rareGrade", id)
		if err != nil {
			return nil, err
		}
		requiredLevel, err := optionalIntAttr(el, "requiredLevel", id)
		if err != nil {
			return nil, err
		}

		byID[id] = model.ItemTemplate{
			TemplateID:        id,
			IconSuffix:        IconSuffix(icon),
			RareGrade:         rareGrade,
			RequiredLevel:     requiredLevel,
			RequiredClass:     lowerAttr(el, "requiredClass"),
			RequiredGender:    lowerAttr(el, "requiredGender"),
			RequiredRace:      lowerAttr(el, "requiredRace"),
			Tradable:          boolAttr(el, "tradable"),
			WarehouseStorable: boolAttr(el, "warehouseStorable"),
		}
	}

	templates := make([]model.ItemTemplate, 0, len(byID))
	for _, t := range byID {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].TemplateID < templates[j].TemplateID })
	return templates, nil
}

// CollectItemConversions flattens the FixedItem children of ItemConversion
// elements into one record per (parent, child) pair. Parents without
// FixedItem children contribute nothing. The class/gender/race filters are
// carried verbatim; unlike template requirements they are not lowercased.
func CollectItemConversions(elems []Element) ([]model.ItemConversion, error) {
	var conversions []model.ItemConversion
	for _, el := range elems {
		parentID, err := templateID(el, "itemTemplateId")
		if err != nil {
			return nil, err
		}
		for _, child := range el.Children {
			if child.Name != "FixedItem" {
				continue
			}
			fixedID, err := templateID(child, "templateId")
			if err != nil {
				return nil, err
			}
			conversions = append(conversions, model.ItemConversion{
				ItemTemplateID:      parentID,
				FixedItemTemplateID: fixedID,
				Class:               optionalAttr(child, "class"),
				Gender:              optionalAttr(child, "gender"),
				Race:                optionalAttr(child, "race"),
			})
		}
	}
	return conversions, nil
}

// IconSuffix extracts the icon-format token from an icon path: the
// substring after the final ".", lowercased. A path without a "." is
// returned whole, lowercased.
func IconSuffix(icon string) string {
	if i := strings.LastIndexByte(icon, '.'); i >= 0 {
		icon = icon[i+1:]
	}
	return strings.ToLower(icon)
}

func templateID(el Element, name string) (int64, error) {
	raw, ok := el.attr(name)
	if !ok {
		return 0, fmt.Errorf("<%s> element missing %s attribute", el.Name, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("<%s> element: %s=%q is not an integer", el.Name, name, raw)
	}
	return id, nil
}

func intAttr(el Element, name string, id int64) (int32, error) {
	raw, ok := el.attr(name)
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("template %d: %s=%q is not an integer", id, name, raw)
	}
	return int32(v), nil
}

func optionalIntAttr(el Element, name string, id int64) (*int32, error) {
	raw, ok := el.attr(name)
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("template %d: %s=%q is not an integer", id, name, raw)
	}
	n := int32(v)
	return &n, nil
}

// optionalAttr returns the attribute value as-is, or nil when absent.
func optionalAttr(el Element, name string) *string {
	raw, ok := el.attr(name)
	if !ok {
		return nil
	}
	return &raw
}

// lowerAttr returns the lowercased attribute value, or nil when absent.
func lowerAttr(el Element, name string) *string {
	raw, ok := el.attr(name)
	if !ok {
		return nil
	}
	v := strings.ToLower(raw)
	return &v
}

// boolAttr is true only for the literal "true"; any other value,
// including absence, is false.
func boolAttr(el Element, name string) bool {
	v, _ := el.attr(name)
	return v == "true"
}
