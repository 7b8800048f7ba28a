package worldstate

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/pkg/idgen"
)

// Sequence kinds used for id allocation
const (
	seqWorld      = "world"
	seqLocation   = "location"
	seqConnection = "connection"
	seqCharacter  = "character"
	seqContainer  = "container"
	seqItem       = "item"
	seqQuest      = "quest"
	seqObjective  = "objective"
	seqEvent      = "event"
)

// Tx is one attempt of an optimistic transaction. It implements Reader;
// writes are staged and only reach redis when the transaction commits.
type Tx struct {
	*reader

	seq         idgen.Sequence
	now         time.Time
	ops         []func(ctx context.Context, pipe redis.Pipeliner)
	afterCommit []func(ctx context.Context)
}

func newTx(rtx *redis.Tx, seq idgen.Sequence, now time.Time) *Tx {
	return &Tx{
		reader: &reader{
			c:       rtx,
			watch:   func(ctx context.Context, keys ...string) error { return rtx.Watch(ctx, keys...).Err() },
			pending: newPendingWrites(),
		},
		seq: seq,
		now: now,
	}
}

// Now is the transaction timestamp applied to every row it writes
func (t *Tx) Now() time.Time {
	return t.now
}

// AfterCommit registers fn to run once the transaction has committed.
// Hooks of attempts that conflict are discarded.
func (t *Tx) AfterCommit(fn func(ctx context.Context)) {
	t.afterCommit = append(t.afterCommit, fn)
}

func (t *Tx) nextID(ctx context.Context, kind string) (int64, error) {
	id, err := t.seq.Next(ctx, kind)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to allocate %s id", kind)
	}
	return id, nil
}

func (t *Tx) stagePut(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", key)
	}
	t.pending.values[key] = data
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, 0)
	})
	return nil
}

func (t *Tx) stageDelete(key string) {
	t.pending.values[key] = nil
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Del(ctx, key)
	})
}

func (t *Tx) addIndex(key string, id int64) {
	t.pending.setMember(key, id, true)
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.SAdd(ctx, key, id)
	})
}

func (t *Tx) removeIndex(key string, id int64) {
	t.pending.setMember(key, id, false)
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.SRem(ctx, key, id)
	})
}

// moveIndex updates membership when an indexed field changes
func (t *Tx) moveIndex(oldKey, newKey string, id int64) {
	if oldKey == newKey {
		return
	}
	if oldKey != "" {
		t.removeIndex(oldKey, id)
	}
	if newKey != "" {
		t.addIndex(newKey, id)
	}
}

func (t *Tx) setLookup(key string, id int64) {
	v := strconv.FormatInt(id, 10)
	t.pending.strings[key] = v
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, v, 0)
	})
}

func (t *Tx) clearLookup(key string) {
	t.pending.strings[key] = ""
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Del(ctx, key)
	})
}

func (t *Tx) commit(ctx context.Context, rtx *redis.Tx) error {
	if len(t.ops) == 0 {
		return nil
	}
	_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range t.ops {
			op(ctx, pipe)
		}
		return nil
	})
	return err
}

// CreateWorld assigns an id and stores a new world
func (t *Tx) CreateWorld(ctx context.Context, w *entities.World) error {
	if w == nil {
		return errors.InvalidArgument("world is required")
	}
	id, err := t.nextID(ctx, seqWorld)
	if err != nil {
		return err
	}
	w.ID = id
	w.CreatedAt, w.UpdatedAt = t.now, t.now
	if w.WorldState == nil {
		w.WorldState = entities.Attributes{}
	}

	if err := t.stagePut(worldKey(id), w); err != nil {
		return err
	}
	t.addIndex(worldsKey, id)
	return nil
}

// PutWorld stores changes to an existing world
func (t *Tx) PutWorld(ctx context.Context, w *entities.World) error {
	if w == nil {
		return errors.InvalidArgument("world is required")
	}
	if _, err := t.GetWorld(ctx, w.ID); err != nil {
		return err
	}
	w.UpdatedAt = t.now
	return t.stagePut(worldKey(w.ID), w)
}

// CreateLocation assigns an id and stores a new location
func (t *Tx) CreateLocation(ctx context.Context, l *entities.Location) error {
	if l == nil {
		return errors.InvalidArgument("location is required")
	}
	id, err := t.nextID(ctx, seqLocation)
	if err != nil {
		return err
	}
	l.ID = id
	l.CreatedAt, l.UpdatedAt = t.now, t.now
	if l.State == nil {
		l.State = entities.Attributes{}
	}

	if err := t.stagePut(locationKey(id), l); err != nil {
		return err
	}
	t.addIndex(worldIndex(l.WorldID, "locations"), id)
	if l.ParentLocationID != nil {
		t.addIndex(childrenIndex(*l.ParentLocationID), id)
	}
	return nil
}

// PutLocation stores changes to an existing location, maintaining the
// children index when the parent changes
func (t *Tx) PutLocation(ctx context.Context, l *entities.Location) error {
	if l == nil {
		return errors.InvalidArgument("location is required")
	}
	prev, err := t.GetLocation(ctx, l.ID)
	if err != nil {
		return err
	}
	l.CreatedAt = prev.CreatedAt
	l.UpdatedAt = t.now

	if err := t.stagePut(locationKey(l.ID), l); err != nil {
		return err
	}
	t.moveIndex(parentIndex(prev.ParentLocationID), parentIndex(l.ParentLocationID), l.ID)
	return nil
}

func parentIndex(parentID *int64) string {
	if parentID == nil {
		return ""
	}
	return childrenIndex(*parentID)
}

// CreateConnection assigns an id and stores a new directed connection
func (t *Tx) CreateConnection(ctx context.Context, c *entities.Connection) error {
	if c == nil {
		return errors.InvalidArgument("connection is required")
	}
	id, err := t.nextID(ctx, seqConnection)
	if err != nil {
		return err
	}
	c.ID = id
	c.Implicit = false
	c.CreatedAt, c.UpdatedAt = t.now, t.now

	if err := t.stagePut(connectionKey(id), c); err != nil {
		return err
	}
	t.addIndex(worldIndex(c.WorldID, "connections"), id)
	t.addIndex(locationIndex(c.FromLocationID, "connections"), id)
	t.addIndex(locationIndex(c.ToLocationID, "connections"), id)
	t.setLookup(connectionPairKey(c.FromLocationID, c.ToLocationID), id)
	return nil
}

// PutConnection stores changes to an existing connection. Endpoints are
// immutable once created.
func (t *Tx) PutConnection(ctx context.Context, c *entities.Connection) error {
	if c == nil || c.Implicit {
		return errors.InvalidArgument("only stored connections can be updated")
	}
	prev, err := t.GetConnection(ctx, c.ID)
	if err != nil {
		return err
	}
	if prev.FromLocationID != c.FromLocationID || prev.ToLocationID != c.ToLocationID {
		return errors.InvalidArgumentf("connection %d endpoints cannot change", c.ID)
	}
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = t.now
	return t.stagePut(connectionKey(c.ID), c)
}

// DeleteConnection removes a connection and its indexes
func (t *Tx) DeleteConnection(ctx context.Context, id int64) error {
	c, err := t.GetConnection(ctx, id)
	if err != nil {
		return err
	}
	t.stageDelete(connectionKey(id))
	t.removeIndex(worldIndex(c.WorldID, "connections"), id)
	t.removeIndex(locationIndex(c.FromLocationID, "connections"), id)
	t.removeIndex(locationIndex(c.ToLocationID, "connections"), id)
	t.clearLookup(connectionPairKey(c.FromLocationID, c.ToLocationID))
	return nil
}

// CreateCharacter assigns an id and stores a new character. Player
// characters are also registered under their user.
func (t *Tx) CreateCharacter(ctx context.Context, c *entities.Character) error {
	if c == nil {
		return errors.InvalidArgument("character is required")
	}
	id, err := t.nextID(ctx, seqCharacter)
	if err != nil {
		return err
	}
	c.ID = id
	c.CreatedAt, c.UpdatedAt = t.now, t.now
	if c.AdditionalStats == nil {
		c.AdditionalStats = entities.Attributes{}
	}

	if err := t.stagePut(characterKey(id), c); err != nil {
		return err
	}
	t.addIndex(worldIndex(c.WorldID, "characters"), id)
	t.addIndex(locationIndex(c.LocationID, "characters"), id)
	if c.UserID != nil {
		t.setLookup(playerKey(c.WorldID, *c.UserID), id)
	}
	return nil
}

// PutCharacter stores changes to an existing character, maintaining the
// location index when the character moves
func (t *Tx) PutCharacter(ctx context.Context, c *entities.Character) error {
	if c == nil {
		return errors.InvalidArgument("character is required")
	}
	prev, err := t.GetCharacter(ctx, c.ID)
	if err != nil {
		return err
	}
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = t.now

	if err := t.stagePut(characterKey(c.ID), c); err != nil {
		return err
	}
	t.moveIndex(locationIndex(prev.LocationID, "characters"), locationIndex(c.LocationID, "characters"), c.ID)
	return nil
}

func containerOwnerIndex(o *entities.Owner) string {
	if o == nil {
		return ""
	}
	switch o.Kind {
	case entities.KindLocation:
		return locationIndex(o.ID, "containers")
	case entities.KindCharacter:
		return characterIndex(o.ID, "containers")
	}
	return ""
}

func itemOwnerIndex(o *entities.Owner) string {
	if o == nil {
		return ""
	}
	switch o.Kind {
	case entities.KindLocation:
		return locationIndex(o.ID, "items")
	case entities.KindCharacter:
		return characterIndex(o.ID, "items")
	case entities.KindContainer:
		return containerItemsIndex(o.ID)
	}
	return ""
}

// CreateContainer assigns an id and stores a new container
func (t *Tx) CreateContainer(ctx context.Context, c *entities.Container) error {
	if c == nil {
		return errors.InvalidArgument("container is required")
	}
	if c.Owner() == nil {
		return errors.InvalidArgument("container must be at a location or carried by a character")
	}
	id, err := t.nextID(ctx, seqContainer)
	if err != nil {
		return err
	}
	c.ID = id
	c.CreatedAt, c.UpdatedAt = t.now, t.now

	if err := t.stagePut(containerKey(id), c); err != nil {
		return err
	}
	t.addIndex(worldIndex(c.WorldID, "containers"), id)
	t.addIndex(containerOwnerIndex(c.Owner()), id)
	return nil
}

// PutContainer stores changes to an existing container
func (t *Tx) PutContainer(ctx context.Context, c *entities.Container) error {
	if c == nil {
		return errors.InvalidArgument("container is required")
	}
	if c.Owner() == nil {
		return errors.InvalidArgument("container must be at a location or carried by a character")
	}
	prev, err := t.GetContainer(ctx, c.ID)
	if err != nil {
		return err
	}
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = t.now

	if err := t.stagePut(containerKey(c.ID), c); err != nil {
		return err
	}
	t.moveIndex(containerOwnerIndex(prev.Owner()), containerOwnerIndex(c.Owner()), c.ID)
	return nil
}

// CreateItem assigns an id and stores a new item
func (t *Tx) CreateItem(ctx context.Context, i *entities.Item) error {
	if i == nil {
		return errors.InvalidArgument("item is required")
	}
	if i.Owner() == nil {
		return errors.InvalidArgument("item must have a location, character or container")
	}
	id, err := t.nextID(ctx, seqItem)
	if err != nil {
		return err
	}
	i.ID = id
	i.CreatedAt, i.UpdatedAt = t.now, t.now
	if i.Properties == nil {
		i.Properties = entities.Attributes{}
	}

	if err := t.stagePut(itemKey(id), i); err != nil {
		return err
	}
	t.addIndex(worldIndex(i.WorldID, "items"), id)
	t.addIndex(itemOwnerIndex(i.Owner()), id)
	return nil
}

// PutItem stores changes to an existing item, moving it between owner
// indexes when its holder changes
func (t *Tx) PutItem(ctx context.Context, i *entities.Item) error {
	if i == nil {
		return errors.InvalidArgument("item is required")
	}
	if i.Owner() == nil {
		return errors.InvalidArgument("item must have a location, character or container")
	}
	prev, err := t.GetItem(ctx, i.ID)
	if err != nil {
		return err
	}
	i.CreatedAt = prev.CreatedAt
	i.UpdatedAt = t.now

	if err := t.stagePut(itemKey(i.ID), i); err != nil {
		return err
	}
	t.moveIndex(itemOwnerIndex(prev.Owner()), itemOwnerIndex(i.Owner()), i.ID)
	return nil
}

// DeleteItem removes an item and its indexes
func (t *Tx) DeleteItem(ctx context.Context, id int64) error {
	i, err := t.GetItem(ctx, id)
	if err != nil {
		return err
	}
	t.stageDelete(itemKey(id))
	t.removeIndex(worldIndex(i.WorldID, "items"), id)
	if idx := itemOwnerIndex(i.Owner()); idx != "" {
		t.removeIndex(idx, id)
	}
	return nil
}

// CreateQuest assigns an id and stores a new quest
func (t *Tx) CreateQuest(ctx context.Context, q *entities.Quest) error {
	if q == nil {
		return errors.InvalidArgument("quest is required")
	}
	id, err := t.nextID(ctx, seqQuest)
	if err != nil {
		return err
	}
	q.ID = id
	q.CreatedAt, q.UpdatedAt = t.now, t.now

	if err := t.stagePut(questKey(id), q); err != nil {
		return err
	}
	t.addIndex(worldIndex(q.WorldID, "quests"), id)
	return nil
}

// PutQuest stores changes to an existing quest
func (t *Tx) PutQuest(ctx context.Context, q *entities.Quest) error {
	if q == nil {
		return errors.InvalidArgument("quest is required")
	}
	prev, err := t.GetQuest(ctx, q.ID)
	if err != nil {
		return err
	}
	q.CreatedAt = prev.CreatedAt
	q.UpdatedAt = t.now
	return t.stagePut(questKey(q.ID), q)
}

// CreateObjective assigns an id and stores a new objective on its quest
func (t *Tx) CreateObjective(ctx context.Context, o *entities.QuestObjective) error {
	if o == nil {
		return errors.InvalidArgument("objective is required")
	}
	id, err := t.nextID(ctx, seqObjective)
	if err != nil {
		return err
	}
	o.ID = id
	o.CreatedAt, o.UpdatedAt = t.now, t.now

	if err := t.stagePut(objectiveKey(id), o); err != nil {
		return err
	}
	t.addIndex(objectivesIndex(o.QuestID), id)
	return nil
}

// PutObjective stores changes to an existing objective
func (t *Tx) PutObjective(ctx context.Context, o *entities.QuestObjective) error {
	if o == nil {
		return errors.InvalidArgument("objective is required")
	}
	prev, err := t.GetObjective(ctx, o.ID)
	if err != nil {
		return err
	}
	if prev.QuestID != o.QuestID {
		return errors.InvalidArgumentf("objective %d cannot move between quests", o.ID)
	}
	o.CreatedAt = prev.CreatedAt
	o.UpdatedAt = t.now
	return t.stagePut(objectiveKey(o.ID), o)
}

// AppendEvent assigns an id and adds an event to the log. Events are
// never updated once written.
func (t *Tx) AppendEvent(ctx context.Context, e *entities.GameEvent) error {
	if e == nil {
		return errors.InvalidArgument("event is required")
	}
	if e.WorldID <= 0 {
		return errors.InvalidArgument("event world id must be positive")
	}
	id, err := t.nextID(ctx, seqEvent)
	if err != nil {
		return err
	}
	e.ID = id
	e.CreatedAt = t.now
	if e.EventData == nil {
		e.EventData = entities.Attributes{}
	}

	if err := t.stagePut(eventKey(id), e); err != nil {
		return err
	}

	member := redis.Z{Score: float64(id), Member: id}
	worldKey := worldEventsKey(e.WorldID)
	var roomKey string
	if e.RoomID != nil {
		roomKey = roomEventsKey(e.WorldID, *e.RoomID)
	}
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.ZAdd(ctx, worldKey, member)
		if roomKey != "" {
			pipe.ZAdd(ctx, roomKey, member)
		}
	})
	return nil
}
