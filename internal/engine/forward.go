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

func (e *engine) GetWorld(ctx context.Context, input *world.GetWorldInput) (*world.GetWorldOutput, error) {
	return call(ctx, e, "get_world", input, e.world.GetWorld)
}

func (e *engine) GetWorldTime(ctx context.Context, input *world.GetWorldTimeInput) (*world.GetWorldTimeOutput, error) {
	return call(ctx, e, "get_world_time", input, e.world.GetWorldTime)
}

func (e *engine) AdvanceTime(ctx context.Context, input *world.AdvanceTimeInput) (*world.AdvanceTimeOutput, error) {
	return call(ctx, e, "advance_time", input, e.world.AdvanceTime)
}

func (e *engine) AdvanceDay(ctx context.Context, input *world.AdvanceDayInput) (*world.AdvanceDayOutput, error) {
	return call(ctx, e, "advance_day", input, e.world.AdvanceDay)
}

func (e *engine) SetWorldState(ctx context.Context, input *world.SetWorldStateInput) (*world.SetWorldStateOutput, error) {
	return call(ctx, e, "set_world_state", input, e.world.SetWorldState)
}

func (e *engine) GetWorldState(ctx context.Context, input *world.GetWorldStateInput) (*world.GetWorldStateOutput, error) {
	return call(ctx, e, "get_world_state", input, e.world.GetWorldState)
}

func (e *engine) GetLocation(ctx context.Context, input *location.GetLocationInput) (*location.GetLocationOutput, error) {
	return call(ctx, e, "get_location", input, e.location.GetLocation)
}

func (e *engine) DescribeLocation(ctx context.Context, input *location.DescribeLocationInput) (*location.DescribeLocationOutput, error) {
	return call(ctx, e, "describe_location", input, e.location.DescribeLocation)
}

func (e *engine) ListCharactersAt(ctx context.Context, input *location.ListAtInput) (*location.ListCharactersAtOutput, error) {
	return call(ctx, e, "list_characters_at", input, e.location.ListCharactersAt)
}

func (e *engine) ListItemsAt(ctx context.Context, input *location.ListAtInput) (*location.ListItemsAtOutput, error) {
	return call(ctx, e, "list_items_at", input, e.location.ListItemsAt)
}

func (e *engine) ListContainersAt(ctx context.Context, input *location.ListAtInput) (*location.ListContainersAtOutput, error) {
	return call(ctx, e, "list_containers_at", input, e.location.ListContainersAt)
}

func (e *engine) GetLocationState(ctx context.Context, input *location.GetLocationStateInput) (*location.GetLocationStateOutput, error) {
	return call(ctx, e, "get_location_state", input, e.location.GetLocationState)
}

func (e *engine) SetLocationState(ctx context.Context, input *location.SetLocationStateInput) (*location.LocationStateOutput, error) {
	return call(ctx, e, "set_location_state", input, e.location.SetLocationState)
}

func (e *engine) ClearLocationState(ctx context.Context, input *location.ClearLocationStateInput) (*location.LocationStateOutput, error) {
	return call(ctx, e, "clear_location_state", input, e.location.ClearLocationState)
}

func (e *engine) GetAllLocationState(ctx context.Context, input *location.GetAllLocationStateInput) (*location.GetAllLocationStateOutput, error) {
	return call(ctx, e, "get_all_location_state", input, e.location.GetAllLocationState)
}

func (e *engine) SetLocationParent(ctx context.Context, input *location.SetLocationParentInput) (*location.SetLocationParentOutput, error) {
	return call(ctx, e, "set_location_parent", input, e.location.SetLocationParent)
}

func (e *engine) CreateConnection(ctx context.Context, input *connection.CreateConnectionInput) (*connection.CreateConnectionOutput, error) {
	return call(ctx, e, "create_connection", input, e.connection.CreateConnection)
}

func (e *engine) ListExits(ctx context.Context, input *connection.ListExitsInput) (*connection.ListExitsOutput, error) {
	return call(ctx, e, "list_exits", input, e.connection.ListExits)
}

func (e *engine) GetConnection(ctx context.Context, input *connection.GetConnectionInput) (*connection.GetConnectionOutput, error) {
	return call(ctx, e, "get_connection", input, e.connection.GetConnection)
}

func (e *engine) GetConnectionByID(ctx context.Context, input *connection.GetConnectionByIDInput) (*connection.GetConnectionOutput, error) {
	return call(ctx, e, "get_connection_by_id", input, e.connection.GetConnectionByID)
}

func (e *engine) OpenDoor(ctx context.Context, input *connection.DoorInput) (*connection.DoorOutput, error) {
	return call(ctx, e, "open_door", input, e.connection.OpenDoor)
}

func (e *engine) CloseDoor(ctx context.Context, input *connection.DoorInput) (*connection.DoorOutput, error) {
	return call(ctx, e, "close_door", input, e.connection.CloseDoor)
}

func (e *engine) LockDoor(ctx context.Context, input *connection.LockDoorInput) (*connection.DoorOutput, error) {
	return call(ctx, e, "lock_door", input, e.connection.LockDoor)
}

func (e *engine) UnlockDoor(ctx context.Context, input *connection.UnlockDoorInput) (*connection.DoorOutput, error) {
	return call(ctx, e, "unlock_door", input, e.connection.UnlockDoor)
}

func (e *engine) RevealExit(ctx context.Context, input *connection.DoorInput) (*connection.DoorOutput, error) {
	return call(ctx, e, "reveal_exit", input, e.connection.RevealExit)
}

func (e *engine) HideExit(ctx context.Context, input *connection.DoorInput) (*connection.DoorOutput, error) {
	return call(ctx, e, "hide_exit", input, e.connection.HideExit)
}

func (e *engine) TraverseConnection(ctx context.Context, input *connection.TraverseConnectionInput) (*connection.TraverseOutput, error) {
	return call(ctx, e, "traverse_connection", input, e.connection.TraverseConnection)
}

func (e *engine) TraverseByDirection(ctx context.Context, input *connection.TraverseByDirectionInput) (*connection.TraverseOutput, error) {
	return call(ctx, e, "traverse_by_direction", input, e.connection.TraverseByDirection)
}

func (e *engine) CreateItem(ctx context.Context, input *item.CreateItemInput) (*item.ItemOutput, error) {
	return call(ctx, e, "create_item", input, e.item.CreateItem)
}

func (e *engine) GetItem(ctx context.Context, input *item.GetItemInput) (*item.ItemOutput, error) {
	return call(ctx, e, "get_item", input, e.item.GetItem)
}

func (e *engine) ModifyItemQuantity(ctx context.Context, input *item.ModifyItemQuantityInput) (*item.ModifyItemQuantityOutput, error) {
	return call(ctx, e, "modify_item_quantity", input, e.item.ModifyItemQuantity)
}

func (e *engine) MoveItem(ctx context.Context, input *item.MoveItemInput) (*item.MoveItemOutput, error) {
	return call(ctx, e, "move_item", input, e.item.MoveItem)
}

func (e *engine) CreateContainer(ctx context.Context, input *item.CreateContainerInput) (*item.ContainerOutput, error) {
	return call(ctx, e, "create_container", input, e.item.CreateContainer)
}

func (e *engine) GetContainer(ctx context.Context, input *item.ContainerInput) (*item.ContainerOutput, error) {
	return call(ctx, e, "get_container", input, e.item.GetContainer)
}

func (e *engine) OpenContainer(ctx context.Context, input *item.ContainerInput) (*item.ContainerOutput, error) {
	return call(ctx, e, "open_container", input, e.item.OpenContainer)
}

func (e *engine) CloseContainer(ctx context.Context, input *item.ContainerInput) (*item.ContainerOutput, error) {
	return call(ctx, e, "close_container", input, e.item.CloseContainer)
}

func (e *engine) GetCharacter(ctx context.Context, input *character.GetCharacterInput) (*character.CharacterOutput, error) {
	return call(ctx, e, "get_character", input, e.character.GetCharacter)
}

func (e *engine) MoveCharacter(ctx context.Context, input *character.MoveCharacterInput) (*character.MoveCharacterOutput, error) {
	return call(ctx, e, "move_character", input, e.character.MoveCharacter)
}

func (e *engine) MoveParty(ctx context.Context, input *character.MovePartyInput) (*character.MovePartyOutput, error) {
	return call(ctx, e, "move_party", input, e.character.MoveParty)
}

func (e *engine) DamageCharacter(ctx context.Context, input *character.HPChangeInput) (*character.HPChangeOutput, error) {
	return call(ctx, e, "damage_character", input, e.character.DamageCharacter)
}

func (e *engine) HealCharacter(ctx context.Context, input *character.HPChangeInput) (*character.HPChangeOutput, error) {
	return call(ctx, e, "heal_character", input, e.character.HealCharacter)
}

func (e *engine) KillCharacter(ctx context.Context, input *character.KillCharacterInput) (*character.HPChangeOutput, error) {
	return call(ctx, e, "kill_character", input, e.character.KillCharacter)
}

func (e *engine) CharacterTakeItem(ctx context.Context, input *character.ItemTransferInput) (*character.ItemTransferOutput, error) {
	return call(ctx, e, "character_take_item", input, e.character.TakeItem)
}

func (e *engine) CharacterDropItem(ctx context.Context, input *character.ItemTransferInput) (*character.ItemTransferOutput, error) {
	return call(ctx, e, "character_drop_item", input, e.character.DropItem)
}

func (e *engine) GetCharacterInventory(ctx context.Context, input *character.GetInventoryInput) (*character.GetInventoryOutput, error) {
	return call(ctx, e, "get_character_inventory", input, e.character.GetInventory)
}

func (e *engine) CreatePlayerCharacter(ctx context.Context, input *character.CreatePlayerCharacterInput) (*character.CharacterOutput, error) {
	return call(ctx, e, "create_player_character", input, e.character.CreatePlayerCharacter)
}

func (e *engine) CreateNPC(ctx context.Context, input *character.CreateNPCInput) (*character.CharacterOutput, error) {
	return call(ctx, e, "create_npc", input, e.character.CreateNPC)
}

func (e *engine) CreateQuest(ctx context.Context, input *quest.CreateQuestInput) (*quest.QuestOutput, error) {
	return call(ctx, e, "create_quest", input, e.quest.CreateQuest)
}

func (e *engine) GetQuest(ctx context.Context, input *quest.GetQuestInput) (*quest.QuestOutput, error) {
	return call(ctx, e, "get_quest", input, e.quest.GetQuest)
}

func (e *engine) AddQuestObjective(ctx context.Context, input *quest.AddQuestObjectiveInput) (*quest.ObjectiveOutput, error) {
	return call(ctx, e, "add_quest_objective", input, e.quest.AddQuestObjective)
}

func (e *engine) CompleteObjective(ctx context.Context, input *quest.ObjectiveInput) (*quest.ObjectiveOutput, error) {
	return call(ctx, e, "complete_objective", input, e.quest.CompleteObjective)
}

func (e *engine) UpdateObjectiveProgress(ctx context.Context, input *quest.UpdateObjectiveProgressInput) (*quest.ObjectiveOutput, error) {
	return call(ctx, e, "update_objective_progress", input, e.quest.UpdateObjectiveProgress)
}

func (e *engine) CheckQuestProgress(ctx context.Context, input *quest.GetQuestInput) (*quest.CheckQuestProgressOutput, error) {
	return call(ctx, e, "check_quest_progress", input, e.quest.CheckQuestProgress)
}

func (e *engine) FailQuest(ctx context.Context, input *quest.QuestStatusInput) (*quest.QuestOutput, error) {
	return call(ctx, e, "fail_quest", input, e.quest.FailQuest)
}

func (e *engine) AbandonQuest(ctx context.Context, input *quest.QuestStatusInput) (*quest.QuestOutput, error) {
	return call(ctx, e, "abandon_quest", input, e.quest.AbandonQuest)
}

func (e *engine) CreateWorld(ctx context.Context, input *builder.CreateWorldInput) (*builder.CreateWorldOutput, error) {
	return call(ctx, e, "create_world", input, e.builder.CreateWorld)
}

func (e *engine) CreateLocation(ctx context.Context, input *builder.CreateLocationInput) (*builder.CreateLocationOutput, error) {
	return call(ctx, e, "create_location", input, e.builder.CreateLocation)
}

func (e *engine) CopyWorld(ctx context.Context, input *builder.CopyWorldInput) (*builder.CopyWorldOutput, error) {
	return call(ctx, e, "copy_world", input, e.builder.CopyWorld)
}

func (e *engine) ImportTemplate(ctx context.Context, input *builder.ImportTemplateInput) (*builder.ImportTemplateOutput, error) {
	return call(ctx, e, "import_template", input, e.builder.ImportTemplate)
}

func (e *engine) GetRecentEvents(ctx context.Context, input *eventlog.GetRecentEventsInput) (*eventlog.GetRecentEventsOutput, error) {
	return call(ctx, e, "get_recent_events", input, e.eventLog.GetRecentEvents)
}

func (e *engine) GetEvents(ctx context.Context, input *eventlog.GetEventsInput) (*eventlog.GetEventsOutput, error) {
	return call(ctx, e, "get_events", input, e.eventLog.GetEvents)
}
