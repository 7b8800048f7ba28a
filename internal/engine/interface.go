// Package engine is the single operation surface of the world state
// engine. It owns one handle per manager and forwards every call
// explicitly, wrapping each in a span, metrics and an operation id.
package engine

import (
	"context"

	"github.com/KirkDiggler/rpg-world/internal/orchestrators/builder"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/character"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/connection"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/item"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/location"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/quest"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/world"
)

// Engine is the GameEngine facade. Every error it returns is an
// *errors.Error; a nil error means the operation succeeded.
type Engine interface {
	// World clock and global state
	GetWorld(ctx context.Context, input *world.GetWorldInput) (*world.GetWorldOutput, error)
	GetWorldTime(ctx context.Context, input *world.GetWorldTimeInput) (*world.GetWorldTimeOutput, error)
	AdvanceTime(ctx context.Context, input *world.AdvanceTimeInput) (*world.AdvanceTimeOutput, error)
	AdvanceDay(ctx context.Context, input *world.AdvanceDayInput) (*world.AdvanceDayOutput, error)
	SetWorldState(ctx context.Context, input *world.SetWorldStateInput) (*world.SetWorldStateOutput, error)
	GetWorldState(ctx context.Context, input *world.GetWorldStateInput) (*world.GetWorldStateOutput, error)

	// Locations
	GetLocation(ctx context.Context, input *location.GetLocationInput) (*location.GetLocationOutput, error)
	DescribeLocation(ctx context.Context, input *location.DescribeLocationInput) (*location.DescribeLocationOutput, error)
	ListCharactersAt(ctx context.Context, input *location.ListAtInput) (*location.ListCharactersAtOutput, error)
	ListItemsAt(ctx context.Context, input *location.ListAtInput) (*location.ListItemsAtOutput, error)
	ListContainersAt(ctx context.Context, input *location.ListAtInput) (*location.ListContainersAtOutput, error)
	GetLocationState(ctx context.Context, input *location.GetLocationStateInput) (*location.GetLocationStateOutput, error)
	SetLocationState(ctx context.Context, input *location.SetLocationStateInput) (*location.LocationStateOutput, error)
	ClearLocationState(ctx context.Context, input *location.ClearLocationStateInput) (*location.LocationStateOutput, error)
	GetAllLocationState(
		ctx context.Context,
		input *location.GetAllLocationStateInput,
	) (*location.GetAllLocationStateOutput, error)
	SetLocationParent(ctx context.Context, input *location.SetLocationParentInput) (*location.SetLocationParentOutput, error)

	// Connections
	CreateConnection(
		ctx context.Context,
		input *connection.CreateConnectionInput,
	) (*connection.CreateConnectionOutput, error)
	ListExits(ctx context.Context, input *connection.ListExitsInput) (*connection.ListExitsOutput, error)
	GetConnection(ctx context.Context, input *connection.GetConnectionInput) (*connection.GetConnectionOutput, error)
	GetConnectionByID(
		ctx context.Context,
		input *connection.GetConnectionByIDInput,
	) (*connection.GetConnectionOutput, error)
	OpenDoor(ctx context.Context, input *connection.DoorInput) (*connection.DoorOutput, error)
	CloseDoor(ctx context.Context, input *connection.DoorInput) (*connection.DoorOutput, error)
	LockDoor(ctx context.Context, input *connection.LockDoorInput) (*connection.DoorOutput, error)
	UnlockDoor(ctx context.Context, input *connection.UnlockDoorInput) (*connection.DoorOutput, error)
	RevealExit(ctx context.Context, input *connection.DoorInput) (*connection.DoorOutput, error)
	HideExit(ctx context.Context, input *connection.DoorInput) (*connection.DoorOutput, error)
	TraverseConnection(ctx context.Context, input *connection.TraverseConnectionInput) (*connection.TraverseOutput, error)
	TraverseByDirection(ctx context.Context, input *connection.TraverseByDirectionInput) (*connection.TraverseOutput, error)

	// Items and containers
	CreateItem(ctx context.Context, input *item.CreateItemInput) (*item.ItemOutput, error)
	GetItem(ctx context.Context, input *item.GetItemInput) (*item.ItemOutput, error)
	ModifyItemQuantity(ctx context.Context, input *item.ModifyItemQuantityInput) (*item.ModifyItemQuantityOutput, error)
	MoveItem(ctx context.Context, input *item.MoveItemInput) (*item.MoveItemOutput, error)
	CreateContainer(ctx context.Context, input *item.CreateContainerInput) (*item.ContainerOutput, error)
	GetContainer(ctx context.Context, input *item.ContainerInput) (*item.ContainerOutput, error)
	OpenContainer(ctx context.Context, input *item.ContainerInput) (*item.ContainerOutput, error)
	CloseContainer(ctx context.Context, input *item.ContainerInput) (*item.ContainerOutput, error)

	// Characters
	GetCharacter(ctx context.Context, input *character.GetCharacterInput) (*character.CharacterOutput, error)
	MoveCharacter(ctx context.Context, input *character.MoveCharacterInput) (*character.MoveCharacterOutput, error)
	MoveParty(ctx context.Context, input *character.MovePartyInput) (*character.MovePartyOutput, error)
	DamageCharacter(ctx context.Context, input *character.HPChangeInput) (*character.HPChangeOutput, error)
	HealCharacter(ctx context.Context, input *character.HPChangeInput) (*character.HPChangeOutput, error)
	KillCharacter(ctx context.Context, input *character.KillCharacterInput) (*character.HPChangeOutput, error)
	CharacterTakeItem(ctx context.Context, input *character.ItemTransferInput) (*character.ItemTransferOutput, error)
	CharacterDropItem(ctx context.Context, input *character.ItemTransferInput) (*character.ItemTransferOutput, error)
	GetCharacterInventory(ctx context.Context, input *character.GetInventoryInput) (*character.GetInventoryOutput, error)
	CreatePlayerCharacter(
		ctx context.Context,
		input *character.CreatePlayerCharacterInput,
	) (*character.CharacterOutput, error)
	CreateNPC(ctx context.Context, input *character.CreateNPCInput) (*character.CharacterOutput, error)

	// Quests
	CreateQuest(ctx context.Context, input *quest.CreateQuestInput) (*quest.QuestOutput, error)
	GetQuest(ctx context.Context, input *quest.GetQuestInput) (*quest.QuestOutput, error)
	AddQuestObjective(ctx context.Context, input *quest.AddQuestObjectiveInput) (*quest.ObjectiveOutput, error)
	CompleteObjective(ctx context.Context, input *quest.ObjectiveInput) (*quest.ObjectiveOutput, error)
	UpdateObjectiveProgress(ctx context.Context, input *quest.UpdateObjectiveProgressInput) (*quest.ObjectiveOutput, error)
	CheckQuestProgress(ctx context.Context, input *quest.GetQuestInput) (*quest.CheckQuestProgressOutput, error)
	FailQuest(ctx context.Context, input *quest.QuestStatusInput) (*quest.QuestOutput, error)
	AbandonQuest(ctx context.Context, input *quest.QuestStatusInput) (*quest.QuestOutput, error)

	// World building
	CreateWorld(ctx context.Context, input *builder.CreateWorldInput) (*builder.CreateWorldOutput, error)
	CreateLocation(ctx context.Context, input *builder.CreateLocationInput) (*builder.CreateLocationOutput, error)
	CopyWorld(ctx context.Context, input *builder.CopyWorldInput) (*builder.CopyWorldOutput, error)
	ImportTemplate(ctx context.Context, input *builder.ImportTemplateInput) (*builder.ImportTemplateOutput, error)

	// Event history
	GetRecentEvents(ctx context.Context, input *eventlog.GetRecentEventsInput) (*eventlog.GetRecentEventsOutput, error)
	GetEvents(ctx context.Context, input *eventlog.GetEventsInput) (*eventlog.GetEventsOutput, error)
}
