package builder

import (
	"bytes"
	"context"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/character"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/connection"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/item"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// Template is the YAML form of a world. Locations nest through Children
// and everything else refers to locations by name.
type Template struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	IsTemplate  bool                   `yaml:"is_template"`
	TimeOfDay   string                 `yaml:"time_of_day"`
	State       map[string]interface{} `yaml:"state"`
	Locations   []LocationTemplate     `yaml:"locations"`
	Connections []ConnectionTemplate   `yaml:"connections"`
	NPCs        []NPCTemplate          `yaml:"npcs"`
	Containers  []ContainerTemplate    `yaml:"containers"`
	Items       []ItemTemplate         `yaml:"items"`
}

// LocationTemplate is a location and the locations nested inside it
type LocationTemplate struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Type        string                 `yaml:"type"`
	State       map[string]interface{} `yaml:"state"`
	Children    []LocationTemplate     `yaml:"children"`
}

// ConnectionTemplate is an explicit exit between two named locations
type ConnectionTemplate struct {
	From               string `yaml:"from"`
	To                 string `yaml:"to"`
	Direction          string `yaml:"direction"`
	Type               string `yaml:"type"`
	Description        string `yaml:"description"`
	ReverseDescription string `yaml:"reverse_description"`
	Bidirectional      bool   `yaml:"bidirectional"`
	Hidden             bool   `yaml:"hidden"`
	Locked             bool   `yaml:"locked"`
	Closed             bool   `yaml:"closed"`
	Key                string `yaml:"key"`
}

// NPCTemplate is a non-player character placed at a named location
type NPCTemplate struct {
	Name        string `yaml:"name"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	MaxHP       int32  `yaml:"max_hp"`
	ArmorClass  *int32 `yaml:"armor_class"`
	Strength    int32  `yaml:"strength"`
	Athletics   int32  `yaml:"athletics"`
	Hostile     bool   `yaml:"hostile"`
	Faction     string `yaml:"faction"`
	Gold        int32  `yaml:"gold"`
}

// ContainerTemplate is a container at a named location with its contents
type ContainerTemplate struct {
	Name        string         `yaml:"name"`
	Location    string         `yaml:"location"`
	Description string         `yaml:"description"`
	Locked      bool           `yaml:"locked"`
	Open        *bool          `yaml:"open"`
	Capacity    *int32         `yaml:"capacity"`
	Items       []ItemTemplate `yaml:"items"`
}

// ItemTemplate is an item. Location is ignored for container contents.
type ItemTemplate struct {
	Name        string                 `yaml:"name"`
	Location    string                 `yaml:"location"`
	Description string                 `yaml:"description"`
	Quantity    int32                  `yaml:"quantity"`
	Type        string                 `yaml:"type"`
	Stackable   bool                   `yaml:"stackable"`
	Properties  map[string]interface{} `yaml:"properties"`
}

// ParseTemplate decodes a YAML template, rejecting unknown fields
func ParseTemplate(data []byte) (*Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Template
	if err := dec.Decode(&t); err != nil {
		return nil, errors.InvalidArgumentf("invalid world template: %v", err)
	}
	return &t, nil
}

func (o *orchestrator) ImportTemplate(ctx context.Context, input *ImportTemplateInput) (*ImportTemplateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	tmpl, err := ParseTemplate(input.Data)
	if err != nil {
		return nil, err
	}
	if input.IsTemplate != nil {
		tmpl.IsTemplate = *input.IsTemplate
	}

	var out *ImportTemplateOutput
	err = o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		imp := &importer{o: o, tx: tx, names: map[string]int64{}, items: map[string]int64{}}
		w, err := imp.run(ctx, tmpl)
		if err != nil {
			return err
		}
		out = &ImportTemplateOutput{World: w, Locations: imp.names, Counts: imp.counts}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type importer struct {
	o      *orchestrator
	tx     *worldstate.Tx
	world  *entities.World
	names  map[string]int64
	items  map[string]int64
	counts CopyCounts
}

func (imp *importer) log() eventlog.Service {
	return imp.o.eventLog
}

func (imp *importer) run(ctx context.Context, t *Template) (*entities.World, error) {
	w, err := imp.o.createWorld(ctx, imp.tx, &CreateWorldInput{
		Name:        t.Name,
		Description: t.Description,
		IsTemplate:  t.IsTemplate,
		TimeOfDay:   entities.TimeOfDay(strings.ToLower(t.TimeOfDay)),
		WorldState:  t.State,
	})
	if err != nil {
		return nil, err
	}
	imp.world = w

	for i := range t.Locations {
		if err := imp.location(ctx, &t.Locations[i], nil); err != nil {
			return nil, err
		}
	}
	for _, tc := range t.NPCs {
		if err := imp.npc(ctx, tc); err != nil {
			return nil, err
		}
	}
	for _, tc := range t.Containers {
		if err := imp.container(ctx, tc); err != nil {
			return nil, err
		}
	}
	for _, ti := range t.Items {
		locID, err := imp.lookup(ti.Location)
		if err != nil {
			return nil, err
		}
		if err := imp.item(ctx, ti, entities.Owner{Kind: entities.KindLocation, ID: locID}); err != nil {
			return nil, err
		}
	}
	for _, tc := range t.Connections {
		if err := imp.connection(ctx, tc); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (imp *importer) lookup(name string) (int64, error) {
	id, ok := imp.names[name]
	if !ok {
		return 0, errors.InvalidArgumentf("template references unknown location %q", name)
	}
	return id, nil
}

func (imp *importer) location(ctx context.Context, t *LocationTemplate, parentID *int64) error {
	if _, dup := imp.names[t.Name]; dup {
		return errors.InvalidArgumentf("template defines location %q twice", t.Name)
	}

	loc, err := imp.o.createLocation(ctx, imp.tx, &CreateLocationInput{
		WorldID:          imp.world.ID,
		ParentLocationID: parentID,
		Name:             t.Name,
		Description:      t.Description,
		LocationType:     t.Type,
		State:            t.State,
	})
	if err != nil {
		return err
	}
	imp.names[t.Name] = loc.ID
	imp.counts.Locations++

	for i := range t.Children {
		if err := imp.location(ctx, &t.Children[i], entities.Int64Ptr(loc.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) npc(ctx context.Context, t NPCTemplate) error {
	if t.Name == "" {
		return errors.InvalidArgument("template npc name is required")
	}
	locID, err := imp.lookup(t.Location)
	if err != nil {
		return err
	}

	attrs := character.Attributes{
		Description: t.Description,
		MaxHP:       t.MaxHP,
		Strength:    t.Strength,
		Athletics:   t.Athletics,
		ArmorClass:  t.ArmorClass,
		IsHostile:   t.Hostile,
		Faction:     t.Faction,
		Gold:        t.Gold,
	}
	vb := errors.NewValidationBuilder()
	character.ValidateAttributes(attrs, vb)
	if err := vb.Build(); err != nil {
		return errors.Wrapf(err, "template npc %q", t.Name)
	}

	ch := character.NewCharacter(imp.world.ID, locID, t.Name, attrs)
	ch.CharacterType = entities.CharacterTypeNPC
	if err := character.CreateInTx(ctx, imp.tx, imp.log(), ch); err != nil {
		return err
	}
	imp.counts.Characters++
	return nil
}

func (imp *importer) container(ctx context.Context, t ContainerTemplate) error {
	if t.Name == "" {
		return errors.InvalidArgument("template container name is required")
	}
	locID, err := imp.lookup(t.Location)
	if err != nil {
		return err
	}

	c, err := item.CreateContainerInTx(ctx, imp.tx, imp.log(), &item.CreateContainerInput{
		WorldID:     imp.world.ID,
		Owner:       entities.Owner{Kind: entities.KindLocation, ID: locID},
		Name:        t.Name,
		Description: t.Description,
		IsLocked:    t.Locked,
		IsOpen:      t.Open,
		Capacity:    t.Capacity,
	})
	if err != nil {
		return err
	}
	imp.counts.Containers++

	for _, ti := range t.Items {
		if err := imp.item(ctx, ti, entities.Owner{Kind: entities.KindContainer, ID: c.ID}); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) item(ctx context.Context, t ItemTemplate, owner entities.Owner) error {
	if t.Name == "" {
		return errors.InvalidArgument("template item name is required")
	}
	if t.Quantity < 0 {
		return errors.InvalidArgumentf("template item %q has a negative quantity", t.Name)
	}

	it, err := item.CreateInTx(ctx, imp.tx, imp.log(), &item.CreateItemInput{
		WorldID:     imp.world.ID,
		Owner:       owner,
		Name:        t.Name,
		Description: t.Description,
		Quantity:    t.Quantity,
		ItemType:    t.Type,
		IsStackable: t.Stackable,
		Properties:  t.Properties,
	})
	if err != nil {
		return err
	}
	imp.items[it.Name] = it.ID
	imp.counts.Items++
	return nil
}

func (imp *importer) connection(ctx context.Context, t ConnectionTemplate) error {
	from, err := imp.lookup(t.From)
	if err != nil {
		return err
	}
	to, err := imp.lookup(t.To)
	if err != nil {
		return err
	}

	visible, open := !t.Hidden, !t.Closed
	input := &connection.CreateConnectionInput{
		WorldID:            imp.world.ID,
		FromLocationID:     from,
		ToLocationID:       to,
		ConnectionType:     entities.ConnectionType(t.Type),
		Direction:          t.Direction,
		Description:        t.Description,
		IsVisible:          &visible,
		IsLocked:           t.Locked,
		IsOpen:             &open,
		IsBidirectional:    t.Bidirectional,
		ReverseDescription: t.ReverseDescription,
	}
	if t.Key != "" {
		keyID, ok := imp.items[t.Key]
		if !ok {
			return errors.InvalidArgumentf("template references unknown key item %q", t.Key)
		}
		input.RequiredItemID = &keyID
	}

	out, err := connection.CreateInTx(ctx, imp.tx, imp.log(), input)
	if err != nil {
		return err
	}
	if out.Created {
		imp.counts.Connections++
		if out.Reverse != nil {
			imp.counts.Connections++
		}
	}
	return nil
}
