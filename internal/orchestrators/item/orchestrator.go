// Package item manages items and containers: creation, stack quantities
// and moving between owners
package item

import (
	"context"
	"log/slog"
	"math"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// Service defines the item and container operations
type Service interface {
	CreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error)
	GetItem(ctx context.Context, input *GetItemInput) (*ItemOutput, error)
	ModifyItemQuantity(ctx context.Context, input *ModifyItemQuantityInput) (*ModifyItemQuantityOutput, error)
	MoveItem(ctx context.Context, input *MoveItemInput) (*MoveItemOutput, error)

	CreateContainer(ctx context.Context, input *CreateContainerInput) (*ContainerOutput, error)
	GetContainer(ctx context.Context, input *ContainerInput) (*ContainerOutput, error)
	OpenContainer(ctx context.Context, input *ContainerInput) (*ContainerOutput, error)
	CloseContainer(ctx context.Context, input *ContainerInput) (*ContainerOutput, error)
}

// Config holds the dependencies for the item orchestrator
type Config struct {
	Repository worldstate.Repository
	EventLog   eventlog.Service
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.EventLog == nil {
		vb.RequiredField("EventLog")
	}

	return vb.Build()
}

type orchestrator struct {
	repo     worldstate.Repository
	eventLog eventlog.Service
}

// NewOrchestrator creates a new item orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		repo:     cfg.Repository,
		eventLog: cfg.EventLog,
	}, nil
}

func (o *orchestrator) CreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidArgument("item name is required")
	}
	if input.Quantity < 0 {
		return nil, errors.InvalidArgument("quantity cannot be negative")
	}

	var out *ItemOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		it, err := CreateInTx(ctx, tx, o.eventLog, input)
		if err != nil {
			return err
		}
		out = &ItemOutput{Item: it}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInTx creates an item with defaults inside an open transaction
func CreateInTx(ctx context.Context, tx *worldstate.Tx, log eventlog.Service, input *CreateItemInput) (*entities.Item, error) {
	worldID, err := ResolveOwner(ctx, tx, input.Owner, true)
	if err != nil {
		return nil, err
	}
	if input.WorldID != 0 && input.WorldID != worldID {
		return nil, errors.InvalidArgumentf("%s %d belongs to another world", input.Owner.Kind, input.Owner.ID)
	}

	it := &entities.Item{
		WorldID:     worldID,
		Name:        input.Name,
		Description: input.Description,
		Quantity:    input.Quantity,
		ItemType:    input.ItemType,
		IsStackable: input.IsStackable,
		Properties:  input.Properties.Clone(),
	}
	if it.Quantity == 0 {
		it.Quantity = DefaultQuantity
	}
	if it.ItemType == "" {
		it.ItemType = DefaultItemType
	}
	it.SetOwner(input.Owner)

	if err := tx.CreateItem(ctx, it); err != nil {
		return nil, err
	}

	if _, err := log.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   it.WorldID,
		EventType: entities.EventItemCreated,
		Target:    entities.Ref(entities.KindItem, it.ID),
		Data: entities.Attributes{
			"name":       it.Name,
			"quantity":   it.Quantity,
			"owner_kind": string(input.Owner.Kind),
			"owner_id":   input.Owner.ID,
		},
	}); err != nil {
		return nil, err
	}
	return it, nil
}

// ResolveOwner checks that an owner exists and returns its world. Items may
// be held by containers; containers only by locations and characters.
func ResolveOwner(ctx context.Context, r worldstate.Reader, owner entities.Owner, allowContainer bool) (int64, error) {
	switch owner.Kind {
	case entities.KindLocation:
		loc, err := r.GetLocation(ctx, owner.ID)
		if err != nil {
			return 0, err
		}
		return loc.WorldID, nil
	case entities.KindCharacter:
		ch, err := r.GetCharacter(ctx, owner.ID)
		if err != nil {
			return 0, err
		}
		return ch.WorldID, nil
	case entities.KindContainer:
		if !allowContainer {
			break
		}
		c, err := r.GetContainer(ctx, owner.ID)
		if err != nil {
			return 0, err
		}
		return c.WorldID, nil
	}
	return 0, errors.InvalidArgumentf("unsupported owner kind %q", owner.Kind).
		WithMeta("owner_kind", string(owner.Kind))
}

func (o *orchestrator) GetItem(ctx context.Context, input *GetItemInput) (*ItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	it, err := o.repo.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Item: it}, nil
}

func (o *orchestrator) ModifyItemQuantity(ctx context.Context, input *ModifyItemQuantityInput) (*ModifyItemQuantityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *ModifyItemQuantityOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		it, err := tx.GetItem(ctx, input.ItemID)
		if err != nil {
			return err
		}

		old := it.Quantity
		sum := int64(old) + int64(input.Delta)
		if sum > math.MaxInt32 {
			return errors.InvalidArgumentf("quantity of item %d cannot exceed %d", it.ID, int64(math.MaxInt32)).
				WithMeta("old_quantity", old)
		}
		updated := int32(sum)
		out = &ModifyItemQuantityOutput{OldQuantity: old, NewQuantity: updated}

		if updated <= 0 {
			if err := tx.DeleteItem(ctx, it.ID); err != nil {
				return err
			}
			out.Consumed = true
			_, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
				WorldID:   it.WorldID,
				EventType: entities.EventItemConsumed,
				Target:    entities.Ref(entities.KindItem, it.ID),
				Data: entities.Attributes{
					"name":         it.Name,
					"old_quantity": old,
					"delta":        input.Delta,
					"reason":       "quantity_depleted",
				},
			})
			return err
		}

		it.Quantity = updated
		if err := tx.PutItem(ctx, it); err != nil {
			return err
		}
		out.Item = it
		_, err = o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   it.WorldID,
			EventType: entities.EventItemQuantityChanged,
			Target:    entities.Ref(entities.KindItem, it.ID),
			Data: entities.Attributes{
				"old_quantity": old,
				"new_quantity": updated,
				"delta":        input.Delta,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if out.Consumed {
		slog.DebugContext(ctx, "item consumed",
			"item_id", input.ItemID,
			"old_quantity", out.OldQuantity)
	}
	return out, nil
}

func (o *orchestrator) MoveItem(ctx context.Context, input *MoveItemInput) (*MoveItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *MoveItemOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		it, err := tx.GetItem(ctx, input.ItemID)
		if err != nil {
			return err
		}

		owner := entities.Owner{Kind: input.To.Kind, ID: input.To.ID}
		worldID, err := ResolveOwner(ctx, tx, owner, true)
		if err != nil {
			return err
		}
		if worldID != it.WorldID {
			return errors.InvalidArgumentf("%s %d belongs to another world", owner.Kind, owner.ID)
		}
		if owner.Kind == entities.KindContainer {
			if err := checkCapacity(ctx, tx, owner.ID, it.ID); err != nil {
				return err
			}
		}

		previous, err := MoveInTx(ctx, tx, o.eventLog, it, owner, nil)
		if err != nil {
			return err
		}

		out = &MoveItemOutput{Item: it, PreviousOwner: previous}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MoveInTx sets exactly one owner on an item, stores it and logs the
// move. The actor is optional.
func MoveInTx(
	ctx context.Context,
	tx *worldstate.Tx,
	log eventlog.Service,
	it *entities.Item,
	owner entities.Owner,
	actor *entities.EntityRef,
) (*entities.Owner, error) {
	previous := it.Owner()
	data := entities.Attributes{
		"old_location_id":  it.LocationID,
		"old_character_id": it.CharacterID,
		"old_container_id": it.ContainerID,
		"new_owner_kind":   string(owner.Kind),
		"new_owner_id":     owner.ID,
	}

	it.SetOwner(owner)
	if err := tx.PutItem(ctx, it); err != nil {
		return nil, err
	}

	if _, err := log.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   it.WorldID,
		EventType: entities.EventItemMoved,
		Actor:     actor,
		Target:    entities.Ref(entities.KindItem, it.ID),
		Data:      data,
	}); err != nil {
		return nil, err
	}
	return previous, nil
}

func checkCapacity(ctx context.Context, r worldstate.Reader, containerID, itemID int64) error {
	c, err := r.GetContainer(ctx, containerID)
	if err != nil {
		return err
	}
	if c.Capacity == nil {
		return nil
	}

	held, err := r.ListItemsInContainer(ctx, containerID)
	if err != nil {
		return err
	}
	count := 0
	for _, it := range held {
		if it.ID != itemID {
			count++
		}
	}
	if count >= int(*c.Capacity) {
		return errors.FailedPreconditionf("%s is full", c.Name).
			WithMeta("container_id", c.ID)
	}
	return nil
}

func (o *orchestrator) CreateContainer(ctx context.Context, input *CreateContainerInput) (*ContainerOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidArgument("container name is required")
	}
	if input.Capacity != nil && *input.Capacity < 0 {
		return nil, errors.InvalidArgument("capacity cannot be negative")
	}

	var out *ContainerOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		c, err := CreateContainerInTx(ctx, tx, o.eventLog, input)
		if err != nil {
			return err
		}
		out = &ContainerOutput{Container: c}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateContainerInTx creates a container inside an open transaction
func CreateContainerInTx(ctx context.Context, tx *worldstate.Tx, log eventlog.Service, input *CreateContainerInput) (*entities.Container, error) {
	worldID, err := ResolveOwner(ctx, tx, input.Owner, false)
	if err != nil {
		return nil, err
	}
	if input.WorldID != 0 && input.WorldID != worldID {
		return nil, errors.InvalidArgumentf("%s %d belongs to another world", input.Owner.Kind, input.Owner.ID)
	}

	open := true
	if input.IsOpen != nil {
		open = *input.IsOpen
	}
	c := &entities.Container{
		WorldID:     worldID,
		Name:        input.Name,
		Description: input.Description,
		IsLocked:    input.IsLocked,
		IsOpen:      open,
		Capacity:    input.Capacity,
	}
	c.SetOwner(input.Owner)
	if err := tx.CreateContainer(ctx, c); err != nil {
		return nil, err
	}

	if _, err := log.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   c.WorldID,
		EventType: entities.EventContainerCreated,
		Target:    entities.Ref(entities.KindContainer, c.ID),
		Data: entities.Attributes{
			"name":       c.Name,
			"owner_kind": string(input.Owner.Kind),
			"owner_id":   input.Owner.ID,
		},
	}); err != nil {
		return nil, err
	}
	return c, nil
}

func (o *orchestrator) GetContainer(ctx context.Context, input *ContainerInput) (*ContainerOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.repo.GetContainer(ctx, input.ContainerID)
	if err != nil {
		return nil, err
	}
	items, err := o.repo.ListItemsInContainer(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &ContainerOutput{Container: c, Items: items}, nil
}

func (o *orchestrator) OpenContainer(ctx context.Context, input *ContainerInput) (*ContainerOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.setOpen(ctx, input.ContainerID, true)
}

func (o *orchestrator) CloseContainer(ctx context.Context, input *ContainerInput) (*ContainerOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.setOpen(ctx, input.ContainerID, false)
}

func (o *orchestrator) setOpen(ctx context.Context, containerID int64, open bool) (*ContainerOutput, error) {
	var out *ContainerOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		c, err := tx.GetContainer(ctx, containerID)
		if err != nil {
			return err
		}
		if open && c.IsLocked {
			return errors.FailedPreconditionf("%s is locked", c.Name).
				WithMeta("container_id", c.ID)
		}

		old := c.IsOpen
		c.IsOpen = open
		if err := tx.PutContainer(ctx, c); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   c.WorldID,
			EventType: entities.EventContainerStateChanged,
			Target:    entities.Ref(entities.KindContainer, c.ID),
			Data: entities.Attributes{
				"field":     "is_open",
				"old_value": old,
				"new_value": open,
			},
		}); err != nil {
			return err
		}

		out = &ContainerOutput{Container: c}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
