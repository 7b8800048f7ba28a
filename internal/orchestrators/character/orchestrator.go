// Package character manages characters: movement, hit points,
// inventory transfers and creation
package character

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/item"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// Service defines the character operations
type Service interface {
	GetCharacter(ctx context.Context, input *GetCharacterInput) (*CharacterOutput, error)
	MoveCharacter(ctx context.Context, input *MoveCharacterInput) (*MoveCharacterOutput, error)
	MoveParty(ctx context.Context, input *MovePartyInput) (*MovePartyOutput, error)

	DamageCharacter(ctx context.Context, input *HPChangeInput) (*HPChangeOutput, error)
	HealCharacter(ctx context.Context, input *HPChangeInput) (*HPChangeOutput, error)
	KillCharacter(ctx context.Context, input *KillCharacterInput) (*HPChangeOutput, error)

	TakeItem(ctx context.Context, input *ItemTransferInput) (*ItemTransferOutput, error)
	DropItem(ctx context.Context, input *ItemTransferInput) (*ItemTransferOutput, error)
	GetInventory(ctx context.Context, input *GetInventoryInput) (*GetInventoryOutput, error)

	CreatePlayerCharacter(ctx context.Context, input *CreatePlayerCharacterInput) (*CharacterOutput, error)
	CreateNPC(ctx context.Context, input *CreateNPCInput) (*CharacterOutput, error)
}

// Config holds the dependencies for the character orchestrator
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

// NewOrchestrator creates a new character orchestrator
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

func (o *orchestrator) GetCharacter(ctx context.Context, input *GetCharacterInput) (*CharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ch, err := o.repo.GetCharacter(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	return &CharacterOutput{Character: ch}, nil
}

func (o *orchestrator) MoveCharacter(ctx context.Context, input *MoveCharacterInput) (*MoveCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *MoveCharacterOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		loc, err := tx.GetLocation(ctx, input.LocationID)
		if err != nil {
			return err
		}
		ch, err := tx.GetCharacter(ctx, input.CharacterID)
		if err != nil {
			return err
		}
		if ch.WorldID != loc.WorldID {
			return errors.InvalidArgumentf("location %d belongs to another world", loc.ID)
		}

		from := ch.LocationID
		ch.LocationID = loc.ID
		if err := tx.PutCharacter(ctx, ch); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   ch.WorldID,
			EventType: entities.EventCharacterMoved,
			Actor:     entities.Ref(entities.KindCharacter, ch.ID),
			Target:    entities.Ref(entities.KindCharacter, ch.ID),
			Data: entities.Attributes{
				"from_location_id": from,
				"to_location_id":   loc.ID,
			},
		}); err != nil {
			return err
		}

		out = &MoveCharacterOutput{Character: ch, FromLocationID: from}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) MoveParty(ctx context.Context, input *MovePartyInput) (*MovePartyOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if _, err := o.repo.GetLocation(ctx, input.LocationID); err != nil {
		return nil, err
	}

	out := &MovePartyOutput{Results: make([]*PartyMoveResult, 0, len(input.CharacterIDs))}
	for _, id := range input.CharacterIDs {
		result := &PartyMoveResult{CharacterID: id}
		_, err := o.MoveCharacter(ctx, &MoveCharacterInput{CharacterID: id, LocationID: input.LocationID})
		if err != nil {
			result.Error = errors.GetMessage(err)
			out.Failed++
			slog.DebugContext(ctx, "party member not moved",
				"character_id", id,
				"location_id", input.LocationID,
				"error", err)
		} else {
			result.Moved = true
			out.Moved++
		}
		out.Results = append(out.Results, result)
	}

	return out, nil
}

func (o *orchestrator) DamageCharacter(ctx context.Context, input *HPChangeInput) (*HPChangeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Amount < 0 {
		return nil, errors.InvalidArgument("damage amount cannot be negative")
	}

	return o.changeHP(ctx, input, entities.EventCharacterDamaged, func(ch *entities.Character) error {
		shiftHP(ch, -int64(input.Amount))
		return nil
	})
}

func (o *orchestrator) HealCharacter(ctx context.Context, input *HPChangeInput) (*HPChangeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Amount < 0 {
		return nil, errors.InvalidArgument("heal amount cannot be negative")
	}

	return o.changeHP(ctx, input, entities.EventCharacterHealed, func(ch *entities.Character) error {
		if ch.IsDead {
			return errors.FailedPrecondition("Cannot heal a dead character").
				WithMeta("character_id", ch.ID)
		}
		shiftHP(ch, int64(input.Amount))
		return nil
	})
}

func (o *orchestrator) KillCharacter(ctx context.Context, input *KillCharacterInput) (*HPChangeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	return o.DamageCharacter(ctx, &HPChangeInput{
		CharacterID: input.CharacterID,
		Amount:      KillDamageAmount,
		Source:      input.Source,
	})
}

func (o *orchestrator) changeHP(
	ctx context.Context,
	input *HPChangeInput,
	eventType string,
	apply func(ch *entities.Character) error,
) (*HPChangeOutput, error) {
	var out *HPChangeOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		ch, err := tx.GetCharacter(ctx, input.CharacterID)
		if err != nil {
			return err
		}

		oldHP, wasDead := ch.CurrentHP, ch.IsDead
		if err := apply(ch); err != nil {
			return err
		}
		if err := tx.PutCharacter(ctx, ch); err != nil {
			return err
		}

		target := entities.Ref(entities.KindCharacter, ch.ID)
		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   ch.WorldID,
			EventType: eventType,
			Actor:     input.Source,
			Target:    target,
			Data: entities.Attributes{
				"old_hp":  oldHP,
				"new_hp":  ch.CurrentHP,
				"amount":  input.Amount,
				"is_dead": ch.IsDead,
			},
		}); err != nil {
			return err
		}

		died := ch.IsDead && !wasDead
		if died {
			if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
				WorldID:   ch.WorldID,
				EventType: entities.EventCharacterDied,
				Actor:     input.Source,
				Target:    target,
				Data: entities.Attributes{
					"location_id": ch.LocationID,
				},
			}); err != nil {
				return err
			}
		}

		out = &HPChangeOutput{Character: ch, OldHP: oldHP, NewHP: ch.CurrentHP, Died: died}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Died {
		slog.InfoContext(ctx, "character died",
			"character_id", out.Character.ID,
			"world_id", out.Character.WorldID)
	}
	return out, nil
}

func (o *orchestrator) TakeItem(ctx context.Context, input *ItemTransferInput) (*ItemTransferOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	return o.transfer(ctx, input, entities.EventItemTaken, func(_ *entities.Item, ch *entities.Character) (entities.Owner, error) {
		return entities.Owner{Kind: entities.KindCharacter, ID: ch.ID}, nil
	})
}

func (o *orchestrator) DropItem(ctx context.Context, input *ItemTransferInput) (*ItemTransferOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	return o.transfer(ctx, input, entities.EventItemDropped, func(it *entities.Item, ch *entities.Character) (entities.Owner, error) {
		if it.CharacterID == nil || *it.CharacterID != ch.ID {
			return entities.Owner{}, errors.FailedPreconditionf("%s is not carrying %s", ch.Name, it.Name).
				WithMeta("item_id", it.ID)
		}
		return entities.Owner{Kind: entities.KindLocation, ID: ch.LocationID}, nil
	})
}

func (o *orchestrator) transfer(
	ctx context.Context,
	input *ItemTransferInput,
	eventType string,
	destination func(it *entities.Item, ch *entities.Character) (entities.Owner, error),
) (*ItemTransferOutput, error) {
	var out *ItemTransferOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		ch, err := tx.GetCharacter(ctx, input.CharacterID)
		if err != nil {
			return err
		}
		it, err := tx.GetItem(ctx, input.ItemID)
		if err != nil {
			return err
		}
		if it.WorldID != ch.WorldID {
			return errors.InvalidArgumentf("item %d belongs to another world", it.ID)
		}

		owner, err := destination(it, ch)
		if err != nil {
			return err
		}

		actor := entities.Ref(entities.KindCharacter, ch.ID)
		if _, err := item.MoveInTx(ctx, tx, o.eventLog, it, owner, actor); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   ch.WorldID,
			EventType: eventType,
			Actor:     actor,
			Target:    entities.Ref(entities.KindItem, it.ID),
			Data: entities.Attributes{
				"item_name":   it.Name,
				"location_id": ch.LocationID,
			},
		}); err != nil {
			return err
		}

		out = &ItemTransferOutput{Item: it}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) GetInventory(ctx context.Context, input *GetInventoryInput) (*GetInventoryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if _, err := o.repo.GetCharacter(ctx, input.CharacterID); err != nil {
		return nil, err
	}

	var (
		items      []*entities.Item
		containers []*entities.Container
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := o.repo.ListItemsCarried(gctx, input.CharacterID)
		if err != nil {
			return errors.Wrap(err, "failed to list carried items")
		}
		items = list
		return nil
	})
	g.Go(func() error {
		list, err := o.repo.ListContainersCarried(gctx, input.CharacterID)
		if err != nil {
			return errors.Wrap(err, "failed to list carried containers")
		}
		containers = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &GetInventoryOutput{Items: items, Containers: containers}, nil
}

func (o *orchestrator) CreatePlayerCharacter(ctx context.Context, input *CreatePlayerCharacterInput) (*CharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", input.Name, vb)
	errors.ValidatePositive("world_id", input.WorldID, vb)
	errors.ValidatePositive("user_id", input.UserID, vb)
	ValidateAttributes(input.Attributes, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	var out *CharacterOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		existing, err := tx.FindPlayerCharacter(ctx, input.WorldID, input.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.AlreadyExistsf("user %d already has a character in this world", input.UserID).
				WithMeta("character_id", existing.ID)
		}

		ch := NewCharacter(input.WorldID, input.LocationID, input.Name, input.Attributes)
		ch.CharacterType = entities.CharacterTypePlayer
		ch.UserID = entities.Int64Ptr(input.UserID)

		out = &CharacterOutput{Character: ch}
		return CreateInTx(ctx, tx, o.eventLog, ch)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) CreateNPC(ctx context.Context, input *CreateNPCInput) (*CharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", input.Name, vb)
	ValidateAttributes(input.Attributes, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	var out *CharacterOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		ch := NewCharacter(input.WorldID, input.LocationID, input.Name, input.Attributes)
		ch.CharacterType = entities.CharacterTypeNPC

		out = &CharacterOutput{Character: ch}
		return CreateInTx(ctx, tx, o.eventLog, ch)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInTx stores a new character after checking its location is in
// the same world, and logs its creation
func CreateInTx(ctx context.Context, tx *worldstate.Tx, log eventlog.Service, ch *entities.Character) error {
	loc, err := tx.GetLocation(ctx, ch.LocationID)
	if err != nil {
		return err
	}
	if ch.WorldID == 0 {
		ch.WorldID = loc.WorldID
	}
	if loc.WorldID != ch.WorldID {
		return errors.InvalidArgumentf("location %d belongs to another world", loc.ID)
	}
	if err := tx.CreateCharacter(ctx, ch); err != nil {
		return err
	}

	_, err = log.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   ch.WorldID,
		EventType: entities.EventCharacterCreated,
		Target:    entities.Ref(entities.KindCharacter, ch.ID),
		Data: entities.Attributes{
			"name":           ch.Name,
			"character_type": ch.CharacterType,
			"location_id":    ch.LocationID,
		},
	})
	return err
}

// NewCharacter applies defaults and starts the character at full health
func NewCharacter(worldID, locationID int64, name string, attrs Attributes) *entities.Character {
	ch := &entities.Character{
		WorldID:         worldID,
		LocationID:      locationID,
		Name:            name,
		Description:     attrs.Description,
		MaxHP:           orDefault(attrs.MaxHP, DefaultMaxHP),
		Strength:        orDefault(attrs.Strength, DefaultAbility),
		Intelligence:    orDefault(attrs.Intelligence, DefaultAbility),
		Charisma:        orDefault(attrs.Charisma, DefaultAbility),
		Athletics:       orDefault(attrs.Athletics, DefaultAbility),
		IsHostile:       attrs.IsHostile,
		Faction:         attrs.Faction,
		Gold:            attrs.Gold,
		AdditionalStats: attrs.AdditionalStats.Clone(),
	}
	ch.CurrentHP = ch.MaxHP

	if attrs.ArmorClass != nil {
		ch.ArmorClass = *attrs.ArmorClass
	} else {
		ch.ArmorClass = DefaultArmorClass(ch.Athletics)
	}
	return ch
}

// ValidateAttributes records problems with caller supplied attributes.
// Zero values fall back to defaults.
func ValidateAttributes(attrs Attributes, vb *errors.ValidationBuilder) {
	if attrs.MaxHP != 0 {
		errors.ValidatePositive("max_hp", int64(attrs.MaxHP), vb)
	}
	if attrs.Gold < 0 {
		vb.Field("gold", "cannot be negative")
	}
}

// shiftHP applies delta without int32 overflow, clamped to [0, MaxHP]
func shiftHP(ch *entities.Character, delta int64) {
	hp := int64(ch.CurrentHP) + delta
	if hp > int64(ch.MaxHP) {
		hp = int64(ch.MaxHP)
	}
	if hp < 0 {
		hp = 0
	}
	ch.SetHP(int32(hp))
}

// DefaultArmorClass is 10 plus half of athletics, rounded down
func DefaultArmorClass(athletics int32) int32 {
	return BaseArmorClass + floorDiv(athletics, 2)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func orDefault(v, def int32) int32 {
	if v == 0 {
		return def
	}
	return v
}
