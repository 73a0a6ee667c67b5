package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/mock/gomock"

	"shorts_factory/internal/domain"
	"shorts_factory/internal/service/mocks"
)

func (s *PipelineTestSuite) TestCreateTask_Admits() {
	ctx := context.Background()
	s.passThroughTx()

	s.gate.EXPECT().Check(ctx, "NASA finds water on Mars").Return(domain.DuplicateVerdict{}, nil)

	var created *domain.Task
	s.tasks.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, t *domain.Task) error {
		created = t
		return nil
	})
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, ev domain.TaskEvent) error {
		s.Equal(domain.EventAdmitted, ev.Kind)
		s.Equal(domain.StatusPending, ev.To)
		return nil
	})

	id, admitted, err := s.pipeline.CreateTask(ctx, domain.AdmissionRequest{
		Title:   "  NASA finds water on Mars ",
		Content: "Liquid water found.",
		Source:  "NewsAPI",
		Niche:   "space",
		Slot:    "noon",
	})
	s.Require().NoError(err)
	s.True(admitted)
	s.Require().NotNil(created)

	s.Equal(created.ID, id)
	s.Equal(domain.StatusPending, created.Status)
	s.Equal("NASA finds water on Mars", created.Title)
	s.Equal(filepath.Join(s.dir, "14-03-2026", "noon", "NASA_finds_water_on_Mars"), created.FolderPath)
	s.DirExists(created.FolderPath)
}

func (s *PipelineTestSuite) TestCreateTask_FolderCollisionGetsSuffix() {
	ctx := context.Background()
	s.passThroughTx()
	s.allowEvents()

	taken := filepath.Join(s.dir, "14-03-2026", "noon", "Rover_lands")
	s.touch(filepath.Join(taken, "leftover.txt"))

	s.gate.EXPECT().Check(ctx, "Rover lands").Return(domain.DuplicateVerdict{}, nil)

	var created *domain.Task
	s.tasks.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, t *domain.Task) error {
		created = t
		return nil
	})

	_, admitted, err := s.pipeline.CreateTask(ctx, domain.AdmissionRequest{Title: "Rover lands", Content: "x", Slot: "noon"})
	s.Require().NoError(err)
	s.True(admitted)

	s.True(strings.HasPrefix(created.FolderPath, taken+"_"))
	s.Len(strings.TrimPrefix(created.FolderPath, taken+"_"), 8)
	s.DirExists(created.FolderPath)
}

func (s *PipelineTestSuite) TestCreateTask_DuplicateIsSkipped() {
	ctx := context.Background()
	s.passThroughTx()

	s.gate.EXPECT().Check(ctx, "Scientists discover a new planet").Return(domain.DuplicateVerdict{
		Duplicate:  true,
		Reason:     domain.ReasonFuzzy,
		Match:      "Scientists discover new planet",
		Similarity: 0.97,
	}, nil)

	id, admitted, err := s.pipeline.CreateTask(ctx, domain.AdmissionRequest{
		Title:   "Scientists discover a new planet",
		Content: "x",
		Slot:    "noon",
	})
	s.NoError(err)
	s.False(admitted)
	s.Empty(id)
	s.NoDirExists(filepath.Join(s.dir, "14-03-2026"))
}

func (s *PipelineTestSuite) TestCreateTask_StoreFailureRemovesFolder() {
	ctx := context.Background()
	s.passThroughTx()

	s.gate.EXPECT().Check(ctx, "Broken insert").Return(domain.DuplicateVerdict{}, nil)
	s.tasks.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("unique violation"))

	_, admitted, err := s.pipeline.CreateTask(ctx, domain.AdmissionRequest{Title: "Broken insert", Content: "x", Slot: "noon"})
	s.Error(err)
	s.False(admitted)
	s.NoDirExists(filepath.Join(s.dir, "14-03-2026", "noon", "Broken_insert"))
}

func (s *PipelineTestSuite) TestCreateTask_GateError() {
	ctx := context.Background()
	s.passThroughTx()
	s.gate.EXPECT().Check(ctx, "x").Return(domain.DuplicateVerdict{}, errors.New("timeout"))

	_, admitted, err := s.pipeline.CreateTask(ctx, domain.AdmissionRequest{Title: "x", Content: "y"})
	s.Error(err)
	s.False(admitted)
}

func (s *PipelineTestSuite) TestCreateTask_RequiresTitleAndContent() {
	_, _, err := s.pipeline.CreateTask(context.Background(), domain.AdmissionRequest{Title: "  ", Content: "x"})
	s.ErrorIs(err, domain.ErrInvalidAdmission)

	_, _, err = s.pipeline.CreateTask(context.Background(), domain.AdmissionRequest{Title: "x"})
	s.ErrorIs(err, domain.ErrInvalidAdmission)
}

func (s *PipelineTestSuite) TestCreateTask_DefaultsManualSlot() {
	ctx := context.Background()
	s.passThroughTx()
	s.allowEvents()
	s.gate.EXPECT().Check(ctx, "Hand picked").Return(domain.DuplicateVerdict{}, nil)

	var created *domain.Task
	s.tasks.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, t *domain.Task) error {
		created = t
		return nil
	})

	_, _, err := s.pipeline.CreateTask(ctx, domain.AdmissionRequest{Title: "Hand picked", Content: "x"})
	s.Require().NoError(err)
	s.Equal("manual", created.Slot)
	s.Equal("general", created.Niche)
}

func (s *PipelineTestSuite) TestScout_AdmitsFirstNonDuplicate() {
	ctx := context.Background()
	s.passThroughTx()
	s.allowEvents()

	s.source.EXPECT().FetchStories(ctx, domain.Niche{Name: "space", Query: "NASA", CategoryID: "28"}, 5).Return([]domain.Story{
		{Title: "Old launch", Content: "seen"},
		{Title: "", Content: "no title"},
		{Title: "Comet visible tonight", URL: "https://example.com/comet"},
		{Title: "Never reached", Content: "x"},
	}, nil)

	s.gate.EXPECT().Check(ctx, "Old launch").Return(domain.DuplicateVerdict{Duplicate: true, Reason: domain.ReasonExact}, nil)
	s.gate.EXPECT().Check(ctx, "Comet visible tonight").Return(domain.DuplicateVerdict{}, nil)

	var created *domain.Task
	s.tasks.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, t *domain.Task) error {
		created = t
		return nil
	})

	id, admitted, err := s.pipeline.Scout(ctx, "noon")
	s.Require().NoError(err)
	s.True(admitted)
	s.Equal(created.ID, id)
	s.Equal("Comet visible tonight", created.Content)
	s.Equal("NewsAPI", created.Source)
	s.Equal("https://example.com/comet", created.SourceURL)
	s.Equal("space", created.Niche)
	s.Equal("noon", created.Slot)
}

func (s *PipelineTestSuite) TestScout_FailingSourceFallsThrough() {
	ctx := context.Background()
	s.passThroughTx()
	s.allowEvents()

	broken := mocks.NewMockSource(s.ctrl)
	broken.EXPECT().ID().Return("reddit").AnyTimes()
	broken.EXPECT().FetchStories(ctx, gomock.Any(), 5).Return(nil, errors.New("403"))

	s.source.EXPECT().FetchStories(ctx, gomock.Any(), 5).Return([]domain.Story{{Title: "Fresh", Content: "x"}}, nil)
	s.gate.EXPECT().Check(ctx, "Fresh").Return(domain.DuplicateVerdict{}, nil)
	s.tasks.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	p := s.newPipeline([]Source{broken, s.source}, s.archiver)
	_, admitted, err := p.Scout(ctx, "noon")
	s.NoError(err)
	s.True(admitted)
}

func (s *PipelineTestSuite) TestScout_NothingNew() {
	ctx := context.Background()
	s.passThroughTx()

	s.source.EXPECT().FetchStories(ctx, gomock.Any(), 5).Return([]domain.Story{{Title: "Seen", Content: "x"}}, nil)
	s.gate.EXPECT().Check(ctx, "Seen").Return(domain.DuplicateVerdict{Duplicate: true}, nil)

	id, admitted, err := s.pipeline.Scout(ctx, "noon")
	s.NoError(err)
	s.False(admitted)
	s.Empty(id)
}
