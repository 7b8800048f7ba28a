package testutils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// Fixture names and values shared by tests
const (
	TestWorldName  = "Eldermere"
	TestUserID     = int64(42)
	TestHeroMaxHP  = int32(15)
	TestCoinAmount = int32(50)
)

// WorldFixture is a small seeded world:
//
//	Town
//	├── Square   (Hero, gold coins, crate holding a rope)
//	└── Tavern
//	    └── Cellar (Goblin, rusty key)
type WorldFixture struct {
	World  *entities.World
	Town   *entities.Location
	Square *entities.Location
	Tavern *entities.Location
	Cellar *entities.Location
	Hero   *entities.Character
	Goblin *entities.Character
	Coins  *entities.Item
	Key    *entities.Item
	Rope   *entities.Item
	Crate  *entities.Container
}

// SeedWorld writes the fixture world directly through the store without
// producing events
func SeedWorld(t *testing.T, ctx context.Context, store worldstate.Repository) *WorldFixture {
	f := &WorldFixture{}

	err := store.Update(ctx, func(tx *worldstate.Tx) error {
		f.World = &entities.World{Name: TestWorldName, TimeOfDay: entities.TimeMorning}
		if err := tx.CreateWorld(ctx, f.World); err != nil {
			return err
		}

		f.Town = &entities.Location{WorldID: f.World.ID, Name: "Town", LocationType: "town"}
		if err := tx.CreateLocation(ctx, f.Town); err != nil {
			return err
		}
		f.Square = &entities.Location{
			WorldID: f.World.ID, ParentLocationID: entities.Int64Ptr(f.Town.ID),
			Name: "Square", Description: "A cobbled square.",
		}
		if err := tx.CreateLocation(ctx, f.Square); err != nil {
			return err
		}
		f.Tavern = &entities.Location{
			WorldID: f.World.ID, ParentLocationID: entities.Int64Ptr(f.Town.ID),
			Name: "Tavern", Description: "A smoky tavern.",
		}
		if err := tx.CreateLocation(ctx, f.Tavern); err != nil {
			return err
		}
		f.Cellar = &entities.Location{
			WorldID: f.World.ID, ParentLocationID: entities.Int64Ptr(f.Tavern.ID),
			Name: "Cellar", Description: "Damp stone walls.",
		}
		if err := tx.CreateLocation(ctx, f.Cellar); err != nil {
			return err
		}

		f.Hero = &entities.Character{
			WorldID: f.World.ID, UserID: entities.Int64Ptr(TestUserID),
			CharacterType: entities.CharacterTypePlayer, LocationID: f.Square.ID,
			Name: "Hero", MaxHP: TestHeroMaxHP, CurrentHP: TestHeroMaxHP,
			Strength: 12, Intelligence: 10, Charisma: 10, Athletics: 14, ArmorClass: 17,
		}
		if err := tx.CreateCharacter(ctx, f.Hero); err != nil {
			return err
		}
		f.Goblin = &entities.Character{
			WorldID: f.World.ID, CharacterType: entities.CharacterTypeNPC, LocationID: f.Cellar.ID,
			Name: "Goblin", MaxHP: 7, CurrentHP: 7, ArmorClass: 13, IsHostile: true,
		}
		if err := tx.CreateCharacter(ctx, f.Goblin); err != nil {
			return err
		}

		f.Coins = &entities.Item{
			WorldID: f.World.ID, LocationID: entities.Int64Ptr(f.Square.ID),
			Name: "gold coins", Quantity: TestCoinAmount, ItemType: "currency", IsStackable: true,
		}
		if err := tx.CreateItem(ctx, f.Coins); err != nil {
			return err
		}
		f.Key = &entities.Item{
			WorldID: f.World.ID, LocationID: entities.Int64Ptr(f.Cellar.ID),
			Name: "rusty key", Quantity: 1, ItemType: "key",
		}
		if err := tx.CreateItem(ctx, f.Key); err != nil {
			return err
		}

		f.Crate = &entities.Container{
			WorldID: f.World.ID, LocationID: entities.Int64Ptr(f.Square.ID),
			Name: "crate", IsOpen: true,
		}
		if err := tx.CreateContainer(ctx, f.Crate); err != nil {
			return err
		}
		f.Rope = &entities.Item{
			WorldID: f.World.ID, ContainerID: entities.Int64Ptr(f.Crate.ID),
			Name: "rope", Quantity: 1, ItemType: "gear",
		}
		return tx.CreateItem(ctx, f.Rope)
	})
	require.NoError(t, err, "failed to seed world")

	return f
}
