package builder_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/builder"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
	"github.com/KirkDiggler/rpg-world/internal/testutils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx      context.Context
	cleanup  func()
	store    worldstate.Repository
	eventLog eventlog.Service
	svc      builder.Service
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, _, s.cleanup = testutils.CreateTestStore(s.T(), nil)

	var err error
	s.eventLog, err = eventlog.NewOrchestrator(&eventlog.Config{Repository: s.store})
	s.Require().NoError(err)

	s.svc, err = builder.NewOrchestrator(&builder.Config{Repository: s.store, EventLog: s.eventLog})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

// interferingRepo runs interfere once, after the first attempt of an
// update has read its keys but before it commits.
type interferingRepo struct {
	worldstate.Repository
	interfere func()
	done      bool
}

func (r *interferingRepo) Update(ctx context.Context, fn func(tx *worldstate.Tx) error) error {
	return r.Repository.Update(ctx, func(tx *worldstate.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if !r.done {
			r.done = true
			r.interfere()
		}
		return nil
	})
}

func (s *OrchestratorTestSuite) importVillage() *builder.ImportTemplateOutput {
	data, err := os.ReadFile("testdata/village.yaml")
	s.Require().NoError(err)

	out, err := s.svc.ImportTemplate(s.ctx, &builder.ImportTemplateInput{Data: data})
	s.Require().NoError(err)
	return out
}

func (s *OrchestratorTestSuite) TestCreateWorldDefaults() {
	out, err := s.svc.CreateWorld(s.ctx, &builder.CreateWorldInput{Name: "Eldermere"})
	s.Require().NoError(err)
	s.Equal(entities.TimeMorning, out.World.TimeOfDay)
	s.Equal(int32(0), out.World.DaysElapsed)
	s.NotNil(out.World.WorldState)

	events, err := s.eventLog.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: out.World.ID})
	s.Require().NoError(err)
	s.Require().Len(events.Events, 1)
	s.Equal(entities.EventWorldCreated, events.Events[0].EventType)
}

func (s *OrchestratorTestSuite) TestCreateWorldRejectsBadTime() {
	_, err := s.svc.CreateWorld(s.ctx, &builder.CreateWorldInput{Name: "x", TimeOfDay: "dusk"})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestCreateLocationParentMustShareWorld() {
	a, err := s.svc.CreateWorld(s.ctx, &builder.CreateWorldInput{Name: "A"})
	s.Require().NoError(err)
	b, err := s.svc.CreateWorld(s.ctx, &builder.CreateWorldInput{Name: "B"})
	s.Require().NoError(err)

	root, err := s.svc.CreateLocation(s.ctx, &builder.CreateLocationInput{WorldID: a.World.ID, Name: "Root"})
	s.Require().NoError(err)

	_, err = s.svc.CreateLocation(s.ctx, &builder.CreateLocationInput{
		WorldID:          b.World.ID,
		ParentLocationID: entities.Int64Ptr(root.Location.ID),
		Name:             "Stray",
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	child, err := s.svc.CreateLocation(s.ctx, &builder.CreateLocationInput{
		WorldID:          a.World.ID,
		ParentLocationID: entities.Int64Ptr(root.Location.ID),
		Name:             "Child",
	})
	s.Require().NoError(err)

	children, err := s.store.ListChildLocations(s.ctx, root.Location.ID)
	s.Require().NoError(err)
	s.Require().Len(children, 1)
	s.Equal(child.Location.ID, children[0].ID)
}

func (s *OrchestratorTestSuite) TestImportTemplate() {
	out := s.importVillage()

	s.Equal("Millbrook", out.World.Name)
	s.True(out.World.IsTemplate)
	s.Equal(entities.TimeEvening, out.World.TimeOfDay)
	s.Equal("rain", out.World.WorldState["weather"])
	s.Equal(builder.CopyCounts{Locations: 5, Connections: 3, Characters: 2, Containers: 1, Items: 2}, out.Counts)

	loft, err := s.store.GetLocation(s.ctx, out.Locations["Loft"])
	s.Require().NoError(err)
	s.Require().NotNil(loft.ParentLocationID)
	s.Equal(out.Locations["Mill"], *loft.ParentLocationID)
	s.True(loft.State.Bool("is_dark"))

	door, err := s.store.FindConnection(s.ctx, out.Locations["Mill"], out.Locations["Loft"])
	s.Require().NoError(err)
	s.Require().NotNil(door)
	s.True(door.IsLocked)
	s.False(door.IsOpen)
	s.Require().NotNil(door.RequiredItemID)

	key, err := s.store.GetItem(s.ctx, *door.RequiredItemID)
	s.Require().NoError(err)
	s.Equal("brass key", key.Name)
	s.NotNil(key.ContainerID)

	back, err := s.store.FindConnection(s.ctx, out.Locations["Woods"], out.Locations["Green"])
	s.Require().NoError(err)
	s.Require().NotNil(back)
	s.Equal("south", back.Direction)

	chars, err := s.store.ListCharactersAt(s.ctx, out.Locations["Woods"])
	s.Require().NoError(err)
	s.Require().Len(chars, 1)
	s.Equal(int32(13), chars[0].ArmorClass)
	s.Equal(int32(11), chars[0].CurrentHP)
	s.Equal(entities.CharacterTypeNPC, chars[0].CharacterType)
}

func (s *OrchestratorTestSuite) TestImportTemplateFailuresLeaveNothing() {
	testCases := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ncolour: blue\n",
		},
		{
			name: "unknown location",
			yaml: "name: x\nlocations:\n  - name: A\nnpcs:\n  - name: Ghost\n    location: B\n",
		},
		{
			name: "duplicate location",
			yaml: "name: x\nlocations:\n  - name: A\n  - name: A\n",
		},
		{
			name: "unknown key",
			yaml: "name: x\nlocations:\n  - name: A\n  - name: B\nconnections:\n  - from: A\n    to: B\n    key: nothing\n",
		},
		{
			name: "negative npc hp",
			yaml: "name: x\nlocations:\n  - name: A\nnpcs:\n  - name: Wraith\n    location: A\n    max_hp: -5\n",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.ImportTemplate(s.ctx, &builder.ImportTemplateInput{Data: []byte(tc.yaml)})
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))

			worlds, err := s.store.ListWorlds(s.ctx)
			s.Require().NoError(err)
			s.Empty(worlds)
		})
	}
}

func (s *OrchestratorTestSuite) TestCopyWorldRetriesOnSourceChange() {
	src := s.importVillage()
	locs, err := s.store.ListLocations(s.ctx, src.World.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(locs)
	target := locs[0].ID

	repo := &interferingRepo{Repository: s.store}
	repo.interfere = func() {
		err := s.store.Update(s.ctx, func(tx *worldstate.Tx) error {
			loc, err := tx.GetLocation(s.ctx, target)
			if err != nil {
				return err
			}
			loc.Name = "Renamed"
			return tx.PutLocation(s.ctx, loc)
		})
		s.Require().NoError(err)
	}

	svc, err := builder.NewOrchestrator(&builder.Config{Repository: repo, EventLog: s.eventLog})
	s.Require().NoError(err)

	out, err := svc.CopyWorld(s.ctx, &builder.CopyWorldInput{SourceWorldID: src.World.ID, Name: "Millbrook II"})
	s.Require().NoError(err)
	s.True(repo.done)

	copied, err := s.store.ListLocations(s.ctx, out.World.ID)
	s.Require().NoError(err)
	s.Len(copied, len(locs))
	names := make([]string, 0, len(copied))
	for _, l := range copied {
		names = append(names, l.Name)
	}
	s.Contains(names, "Renamed")

	worlds, err := s.store.ListWorlds(s.ctx)
	s.Require().NoError(err)
	s.Len(worlds, 2)
}

func (s *OrchestratorTestSuite) TestCopyWorld() {
	src := s.importVillage()

	// wound the wolf and kill the miller in the source world
	err := s.store.Update(s.ctx, func(tx *worldstate.Tx) error {
		chars, err := tx.ListCharacters(s.ctx, src.World.ID)
		if err != nil {
			return err
		}
		for _, ch := range chars {
			ch.SetHP(0)
			if err := tx.PutCharacter(s.ctx, ch); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	out, err := s.svc.CopyWorld(s.ctx, &builder.CopyWorldInput{SourceWorldID: src.World.ID, Name: "Millbrook II"})
	s.Require().NoError(err)
	s.NotEqual(src.World.ID, out.World.ID)
	s.Equal("Millbrook II", out.World.Name)
	s.False(out.World.IsTemplate)
	s.Equal(entities.TimeEvening, out.World.TimeOfDay)
	s.Equal(src.Counts, out.Counts)

	locs, err := s.store.ListLocations(s.ctx, out.World.ID)
	s.Require().NoError(err)
	s.Len(locs, 5)

	byName := map[string]*entities.Location{}
	for _, l := range locs {
		byName[l.Name] = l
	}
	s.Require().NotNil(byName["Loft"].ParentLocationID)
	s.Equal(byName["Mill"].ID, *byName["Loft"].ParentLocationID)
	s.Nil(byName["Woods"].ParentLocationID)

	chars, err := s.store.ListCharacters(s.ctx, out.World.ID)
	s.Require().NoError(err)
	s.Len(chars, 2)
	for _, ch := range chars {
		s.False(ch.IsDead)
		s.Equal(ch.MaxHP, ch.CurrentHP)
	}

	door, err := s.store.FindConnection(s.ctx, byName["Mill"].ID, byName["Loft"].ID)
	s.Require().NoError(err)
	s.Require().NotNil(door)
	s.Require().NotNil(door.RequiredItemID)
	key, err := s.store.GetItem(s.ctx, *door.RequiredItemID)
	s.Require().NoError(err)
	s.Equal(out.World.ID, key.WorldID)

	containers, err := s.store.ListContainersAt(s.ctx, byName["Loft"].ID)
	s.Require().NoError(err)
	s.Require().Len(containers, 1)
	held, err := s.store.ListItemsInContainer(s.ctx, containers[0].ID)
	s.Require().NoError(err)
	s.Len(held, 1)

	events, err := s.eventLog.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: out.World.ID})
	s.Require().NoError(err)
	s.Require().Len(events.Events, 1)
	s.Equal(entities.EventWorldCopied, events.Events[0].EventType)
}

func (s *OrchestratorTestSuite) TestCopyMissingWorld() {
	_, err := s.svc.CopyWorld(s.ctx, &builder.CopyWorldInput{SourceWorldID: 77})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}
