package worldstate

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
)

// pendingWrites is the staged, uncommitted view of a transaction
type pendingWrites struct {
	// values holds staged JSON rows; a nil slice marks a deletion
	values map[string][]byte
	// sets holds staged membership changes; true adds, false removes
	sets map[string]map[int64]bool
	// strings holds staged lookup keys; an empty string marks a deletion
	strings map[string]string
}

func newPendingWrites() *pendingWrites {
	return &pendingWrites{
		values:  make(map[string][]byte),
		sets:    make(map[string]map[int64]bool),
		strings: make(map[string]string),
	}
}

func (p *pendingWrites) setMember(key string, id int64, present bool) {
	m, ok := p.sets[key]
	if !ok {
		m = make(map[int64]bool)
		p.sets[key] = m
	}
	m[id] = present
}

// reader implements Reader over any redis command set. Inside a transaction
// watch is set so every key read is WATCHed, and pending overlays staged writes.
type reader struct {
	c       redis.Cmdable
	watch   func(ctx context.Context, keys ...string) error
	pending *pendingWrites
}

func (r *reader) watchKeys(ctx context.Context, keys ...string) error {
	if r.watch == nil {
		return nil
	}
	if err := r.watch(ctx, keys...); err != nil {
		return errors.Wrap(err, "failed to watch keys")
	}
	return nil
}

func (r *reader) getRaw(ctx context.Context, key string) ([]byte, bool, error) {
	if r.pending != nil {
		if data, ok := r.pending.values[key]; ok {
			return data, data != nil, nil
		}
	}
	if err := r.watchKeys(ctx, key); err != nil {
		return nil, false, err
	}

	data, err := r.c.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "failed to get %s", key)
	}
	return data, true, nil
}

func (r *reader) getString(ctx context.Context, key string) (string, error) {
	if r.pending != nil {
		if v, ok := r.pending.strings[key]; ok {
			return v, nil
		}
	}
	if err := r.watchKeys(ctx, key); err != nil {
		return "", err
	}

	v, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to get %s", key)
	}
	return v, nil
}

// lookupID resolves a lookup key to an entity id, 0 when absent
func (r *reader) lookupID(ctx context.Context, key string) (int64, error) {
	v, err := r.getString(ctx, key)
	if err != nil || v == "" {
		return 0, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed lookup value at %s", key)
	}
	return id, nil
}

// members returns the ids in an index set in ascending order
func (r *reader) members(ctx context.Context, key string) ([]int64, error) {
	if err := r.watchKeys(ctx, key); err != nil {
		return nil, err
	}

	raw, err := r.c.SMembers(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read index %s", key)
	}

	set := make(map[int64]bool, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed index member",
				"index_key", key,
				"member", s)
			continue
		}
		set[id] = true
	}
	if r.pending != nil {
		for id, present := range r.pending.sets[key] {
			if present {
				set[id] = true
			} else {
				delete(set, id)
			}
		}
	}

	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func getEntity[T any](ctx context.Context, r *reader, key, label string, id int64) (*T, error) {
	if id <= 0 {
		return nil, errors.InvalidArgumentf("%s id must be positive", label)
	}

	data, found, err := r.getRaw(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NotFoundf("%s %d not found", label, id)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %s %d", label, id)
	}
	return &v, nil
}

// listEntities loads every entity referenced by an index set. Ids whose
// row is gone are skipped.
func listEntities[T any](
	ctx context.Context,
	r *reader,
	indexKey, label string,
	keyFn func(int64) string,
) ([]*T, error) {
	ids, err := r.members(ctx, indexKey)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "loading entities from index",
		"index_key", indexKey,
		"count", len(ids))

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		v, err := getEntity[T](ctx, r, keyFn(id), label, id)
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "index references missing entity",
					"index_key", indexKey,
					"id", id)
				continue
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *reader) GetWorld(ctx context.Context, id int64) (*entities.World, error) {
	return getEntity[entities.World](ctx, r, worldKey(id), labelWorld, id)
}

func (r *reader) ListWorlds(ctx context.Context) ([]*entities.World, error) {
	return listEntities[entities.World](ctx, r, worldsKey, labelWorld, worldKey)
}

func (r *reader) GetLocation(ctx context.Context, id int64) (*entities.Location, error) {
	return getEntity[entities.Location](ctx, r, locationKey(id), labelLocation, id)
}

func (r *reader) ListLocations(ctx context.Context, worldID int64) ([]*entities.Location, error) {
	return listEntities[entities.Location](ctx, r, worldIndex(worldID, "locations"), labelLocation, locationKey)
}

func (r *reader) ListChildLocations(ctx context.Context, parentID int64) ([]*entities.Location, error) {
	return listEntities[entities.Location](ctx, r, childrenIndex(parentID), labelLocation, locationKey)
}

func (r *reader) GetConnection(ctx context.Context, id int64) (*entities.Connection, error) {
	return getEntity[entities.Connection](ctx, r, connectionKey(id), labelConnection, id)
}

func (r *reader) ListConnections(ctx context.Context, worldID int64) ([]*entities.Connection, error) {
	return listEntities[entities.Connection](ctx, r, worldIndex(worldID, "connections"), labelConnection, connectionKey)
}

func (r *reader) ListConnectionsAt(ctx context.Context, locationID int64) ([]*entities.Connection, error) {
	return listEntities[entities.Connection](
		ctx, r, locationIndex(locationID, "connections"), labelConnection, connectionKey)
}

func (r *reader) FindConnection(ctx context.Context, fromID, toID int64) (*entities.Connection, error) {
	id, err := r.lookupID(ctx, connectionPairKey(fromID, toID))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return r.GetConnection(ctx, id)
}

func (r *reader) GetCharacter(ctx context.Context, id int64) (*entities.Character, error) {
	return getEntity[entities.Character](ctx, r, characterKey(id), labelCharacter, id)
}

func (r *reader) ListCharacters(ctx context.Context, worldID int64) ([]*entities.Character, error) {
	return listEntities[entities.Character](ctx, r, worldIndex(worldID, "characters"), labelCharacter, characterKey)
}

func (r *reader) ListCharactersAt(ctx context.Context, locationID int64) ([]*entities.Character, error) {
	return listEntities[entities.Character](
		ctx, r, locationIndex(locationID, "characters"), labelCharacter, characterKey)
}

func (r *reader) FindPlayerCharacter(ctx context.Context, worldID, userID int64) (*entities.Character, error) {
	id, err := r.lookupID(ctx, playerKey(worldID, userID))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return r.GetCharacter(ctx, id)
}

func (r *reader) GetContainer(ctx context.Context, id int64) (*entities.Container, error) {
	return getEntity[entities.Container](ctx, r, containerKey(id), labelContainer, id)
}

func (r *reader) ListContainers(ctx context.Context, worldID int64) ([]*entities.Container, error) {
	return listEntities[entities.Container](ctx, r, worldIndex(worldID, "containers"), labelContainer, containerKey)
}

func (r *reader) ListContainersAt(ctx context.Context, locationID int64) ([]*entities.Container, error) {
	return listEntities[entities.Container](
		ctx, r, locationIndex(locationID, "containers"), labelContainer, containerKey)
}

func (r *reader) ListContainersCarried(ctx context.Context, characterID int64) ([]*entities.Container, error) {
	return listEntities[entities.Container](
		ctx, r, characterIndex(characterID, "containers"), labelContainer, containerKey)
}

func (r *reader) GetItem(ctx context.Context, id int64) (*entities.Item, error) {
	return getEntity[entities.Item](ctx, r, itemKey(id), labelItem, id)
}

func (r *reader) ListItems(ctx context.Context, worldID int64) ([]*entities.Item, error) {
	return listEntities[entities.Item](ctx, r, worldIndex(worldID, "items"), labelItem, itemKey)
}

func (r *reader) ListItemsAt(ctx context.Context, locationID int64) ([]*entities.Item, error) {
	return listEntities[entities.Item](ctx, r, locationIndex(locationID, "items"), labelItem, itemKey)
}

func (r *reader) ListItemsCarried(ctx context.Context, characterID int64) ([]*entities.Item, error) {
	return listEntities[entities.Item](ctx, r, characterIndex(characterID, "items"), labelItem, itemKey)
}

func (r *reader) ListItemsInContainer(ctx context.Context, containerID int64) ([]*entities.Item, error) {
	return listEntities[entities.Item](ctx, r, containerItemsIndex(containerID), labelItem, itemKey)
}

func (r *reader) GetQuest(ctx context.Context, id int64) (*entities.Quest, error) {
	return getEntity[entities.Quest](ctx, r, questKey(id), labelQuest, id)
}

func (r *reader) ListQuests(ctx context.Context, worldID int64) ([]*entities.Quest, error) {
	return listEntities[entities.Quest](ctx, r, worldIndex(worldID, "quests"), labelQuest, questKey)
}

func (r *reader) GetObjective(ctx context.Context, id int64) (*entities.QuestObjective, error) {
	return getEntity[entities.QuestObjective](ctx, r, objectiveKey(id), labelObjective, id)
}

func (r *reader) ListObjectives(ctx context.Context, questID int64) ([]*entities.QuestObjective, error) {
	return listEntities[entities.QuestObjective](ctx, r, objectivesIndex(questID), labelObjective, objectiveKey)
}

func (r *reader) ListEvents(ctx context.Context, input ListEventsInput) ([]*entities.GameEvent, error) {
	if input.WorldID <= 0 {
		return nil, errors.InvalidArgument("world id must be positive")
	}

	key := worldEventsKey(input.WorldID)
	if input.RoomID != nil {
		key = roomEventsKey(input.WorldID, *input.RoomID)
	}

	stop := int64(-1)
	if input.Limit > 0 {
		stop = int64(input.Limit - 1)
	}

	raw, err := r.c.ZRevRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read event index %s", key)
	}

	events := make([]*entities.GameEvent, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		ev, err := getEntity[entities.GameEvent](ctx, r, eventKey(id), labelEvent, id)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
