package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/mock/gomock"

	"shorts_factory/internal/domain"
)

func (s *PipelineTestSuite) TestScriptStage_RepairsKeywordsAndClampsImages() {
	ctx := context.Background()
	s.allowEvents()
	task := s.newTask(domain.StatusPending)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusPending).Return(task, nil)
	s.writer.EXPECT().WriteScript(ctx, domain.ScriptRequest{
		Title:   task.Title,
		Content: task.Content,
		Niche:   "space",
	}).Return(&domain.ScriptDraft{
		Scenes: []domain.Scene{
			{Text: " Water was found. ", Keywords: []string{"mars", " Mars ", ""}, ImageCount: 5},
			{Text: "What comes next?", Keywords: nil, ImageCount: 0},
		},
		Metadata: domain.Metadata{Description: "Big news", Tags: []string{"nasa", "NASA", " mars "}},
	}, nil)

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusPending, domain.StatusScripted, &update)

	res, err := s.pipeline.RunStage(ctx, "script")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
	s.Equal(1, res.Report.Repaired)

	s.Require().NotNil(update.Script)
	scenes := update.Script.Scenes
	s.Require().Len(scenes, 2)
	s.Equal("Water was found.", scenes[0].Text)
	s.Equal([]string{"mars"}, scenes[0].Keywords)
	s.Equal(2, scenes[0].ImageCount)
	s.Equal(domain.FallbackKeywords, scenes[1].Keywords)
	s.Equal(1, scenes[1].ImageCount)

	s.Require().NotNil(update.Metadata)
	s.Equal(task.Title, update.Metadata.Title)
	s.Equal([]string{"nasa", "mars"}, update.Metadata.Tags)
}

func (s *PipelineTestSuite) TestScriptStage_TruncatesSourceText() {
	ctx := context.Background()
	s.allowEvents()
	task := s.newTask(domain.StatusPending)
	task.Content = strings.Repeat("é", 5000)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusPending).Return(task, nil)
	s.writer.EXPECT().WriteScript(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.ScriptRequest) (*domain.ScriptDraft, error) {
			s.Equal(3000, len([]rune(req.Content)))
			return &domain.ScriptDraft{Scenes: []domain.Scene{{Text: "x", Keywords: []string{"k"}, ImageCount: 1}}}, nil
		},
	)
	s.tasks.EXPECT().Advance(ctx, task.ID, domain.StatusPending, domain.StatusScripted, gomock.Any()).Return(nil)

	res, err := s.pipeline.RunStage(ctx, "script")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
}

func (s *PipelineTestSuite) TestScriptStage_SceneWithoutTextFails() {
	ctx := context.Background()
	task := s.newTask(domain.StatusPending)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusPending).Return(task, nil)
	s.writer.EXPECT().WriteScript(ctx, gomock.Any()).Return(&domain.ScriptDraft{
		Scenes: []domain.Scene{{Text: "ok", Keywords: []string{"a"}, ImageCount: 1}, {Text: "  "}},
	}, nil)

	res, err := s.pipeline.RunStage(ctx, "script")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeFailed, res.Outcome)
	s.ErrorIs(res.Err, domain.ErrInvalidScript)
}

func (s *PipelineTestSuite) TestScriptStage_NoDraft() {
	ctx := context.Background()
	task := s.newTask(domain.StatusPending)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusPending).Return(task, nil)
	s.writer.EXPECT().WriteScript(ctx, gomock.Any()).Return(nil, nil)

	res, err := s.pipeline.RunStage(ctx, "script")
	s.Require().NoError(err)
	s.ErrorIs(res.Err, domain.ErrInvalidScript)
}

func (s *PipelineTestSuite) scriptedTask() *domain.Task {
	task := s.newTask(domain.StatusScripted)
	task.Script = domain.Script{Scenes: []domain.Scene{
		{Text: "Water was found.", Keywords: []string{"mars", "rover"}, ImageCount: 2},
		{Text: "What comes next?", Keywords: []string{"sky"}, ImageCount: 1},
	}}
	task.Metadata = domain.Metadata{Title: "Water on Mars!"}
	return task
}

func (s *PipelineTestSuite) TestNarrationStage_VoicesEveryScene() {
	ctx := context.Background()
	s.allowEvents()
	task := s.scriptedTask()
	audio0 := filepath.Join(task.FolderPath, "audio_0.mp3")
	audio1 := filepath.Join(task.FolderPath, "audio_1.mp3")

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusScripted).Return(task, nil)
	s.synth.EXPECT().Synthesize(gomock.Any(), "Water was found.", audio0).Return(nil)
	s.synth.EXPECT().Synthesize(gomock.Any(), "What comes next?", audio1).Return(nil)
	s.prober.EXPECT().Duration(gomock.Any(), audio0).Return(4.5, nil)
	s.prober.EXPECT().Duration(gomock.Any(), audio1).Return(3.0, nil)

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusScripted, domain.StatusVoiced, &update)

	res, err := s.pipeline.RunStage(ctx, "narration")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)

	scenes := update.Script.Scenes
	s.Equal(audio0, scenes[0].AudioPath)
	s.InDelta(4.5, scenes[0].AudioSeconds, 1e-9)
	s.Equal(audio1, scenes[1].AudioPath)
	s.InDelta(3.0, scenes[1].AudioSeconds, 1e-9)
}

func (s *PipelineTestSuite) TestNarrationStage_AnySceneFailureKeepsTask() {
	ctx := context.Background()
	task := s.scriptedTask()

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusScripted).Return(task, nil)
	s.synth.EXPECT().Synthesize(gomock.Any(), "Water was found.", gomock.Any()).Return(errors.New("edge-tts: 503"))
	s.synth.EXPECT().Synthesize(gomock.Any(), "What comes next?", gomock.Any()).Return(nil).AnyTimes()
	s.prober.EXPECT().Duration(gomock.Any(), gomock.Any()).Return(3.0, nil).AnyTimes()

	res, err := s.pipeline.RunStage(ctx, "narration")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeFailed, res.Outcome)
	s.ErrorContains(res.Err, "scene 0")
}

func (s *PipelineTestSuite) TestNarrationStage_EmptyAudioFails() {
	ctx := context.Background()
	task := s.scriptedTask()
	task.Script.Scenes = task.Script.Scenes[:1]

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusScripted).Return(task, nil)
	s.synth.EXPECT().Synthesize(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.prober.EXPECT().Duration(gomock.Any(), gomock.Any()).Return(0.0, nil)

	res, err := s.pipeline.RunStage(ctx, "narration")
	s.Require().NoError(err)
	s.ErrorIs(res.Err, domain.ErrMissingMedia)
}

func (s *PipelineTestSuite) voicedTask() *domain.Task {
	task := s.scriptedTask()
	task.Status = domain.StatusVoiced
	for i := range task.Script.Scenes {
		task.Script.Scenes[i].AudioPath = filepath.Join(task.FolderPath, fmt.Sprintf("audio_%d.mp3", i))
		task.Script.Scenes[i].AudioSeconds = 6
	}
	return task
}

func (s *PipelineTestSuite) TestVisualsStage_FallsBackPerImage() {
	ctx := context.Background()
	s.allowEvents()
	task := s.voicedTask()
	img := func(scene, i int) string {
		return filepath.Join(task.FolderPath, fmt.Sprintf("scene_%d_img_%d.jpg", scene, i))
	}

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusVoiced).Return(task, nil)
	s.images.EXPECT().Fetch(ctx, domain.ImageQuery{Keyword: "mars", Rank: 0}, img(0, 0)).Return(nil)
	s.images.EXPECT().Fetch(ctx, domain.ImageQuery{Keyword: "rover", Rank: 0}, img(0, 1)).Return(errors.New("no results"))
	s.images.EXPECT().Fetch(ctx, domain.ImageQuery{Keyword: "News Studio", Rank: 0}, img(0, 1)).Return(nil)
	s.images.EXPECT().Fetch(ctx, domain.ImageQuery{Keyword: "sky", Rank: 0}, img(1, 0)).Return(nil)

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusVoiced, domain.StatusVisualsReady, &update)

	res, err := s.pipeline.RunStage(ctx, "visuals")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
	s.Equal(1, res.Report.Repaired)
	s.Equal(0, res.Report.Skipped)

	s.Equal([]string{img(0, 0), img(0, 1)}, update.Script.Scenes[0].ImagePaths)
	s.Equal([]string{img(1, 0)}, update.Script.Scenes[1].ImagePaths)
}

func (s *PipelineTestSuite) TestVisualsStage_PartialSceneIsKept() {
	ctx := context.Background()
	s.allowEvents()
	task := s.voicedTask()

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusVoiced).Return(task, nil)
	s.images.EXPECT().Fetch(ctx, domain.ImageQuery{Keyword: "mars", Rank: 0}, gomock.Any()).Return(nil)
	s.images.EXPECT().Fetch(ctx, domain.ImageQuery{Keyword: "rover", Rank: 0}, gomock.Any()).Return(errors.New("timeout"))
	s.images.EXPECT().Fetch(ctx, domain.ImageQuery{Keyword: "News Studio", Rank: 0}, gomock.Any()).Return(errors.New("timeout"))
	s.images.EXPECT().Fetch(ctx, domain.ImageQuery{Keyword: "sky", Rank: 0}, gomock.Any()).Return(nil)

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusVoiced, domain.StatusVisualsReady, &update)

	res, err := s.pipeline.RunStage(ctx, "visuals")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
	s.Equal(1, res.Report.Skipped)
	s.Len(update.Script.Scenes[0].ImagePaths, 1)
}

func (s *PipelineTestSuite) TestVisualsStage_SceneWithoutImagesFails() {
	ctx := context.Background()
	task := s.voicedTask()

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusVoiced).Return(task, nil)
	s.images.EXPECT().Fetch(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q domain.ImageQuery, _ string) error {
			if q.Keyword == "sky" || q.Keyword == domain.FallbackKeywords[0] {
				return errors.New("404")
			}
			return nil
		},
	).Times(4)

	res, err := s.pipeline.RunStage(ctx, "visuals")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeFailed, res.Outcome)
	s.ErrorIs(res.Err, domain.ErrMissingMedia)
	s.ErrorContains(res.Err, "scene 1")
}

func (s *PipelineTestSuite) TestTimelineStage_SplitsAudioOverImages() {
	ctx := context.Background()
	s.allowEvents()
	task := s.newTask(domain.StatusVisualsReady)
	audio := filepath.Join(task.FolderPath, "audio_0.mp3")
	s.touch(audio)

	var images []string
	for i := range 3 {
		p := filepath.Join(task.FolderPath, fmt.Sprintf("scene_0_img_%d.jpg", i))
		s.touch(p)
		images = append(images, p)
	}
	missing := filepath.Join(task.FolderPath, "scene_0_img_3.jpg")

	task.Script = domain.Script{Scenes: []domain.Scene{{
		Text:         "Water was found.",
		Keywords:     []string{"mars"},
		ImageCount:   3,
		AudioPath:    audio,
		AudioSeconds: 9,
		ImagePaths:   append(append([]string(nil), images...), missing),
	}}}

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusVisualsReady).Return(task, nil)
	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusVisualsReady, domain.StatusReadyToAssemble, &update)

	res, err := s.pipeline.RunStage(ctx, "timeline")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
	s.Equal(1, res.Report.Skipped)

	sc := update.Script.Scenes[0]
	s.Equal(images, sc.ImagePaths)
	s.InDelta(3.0, sc.ImageSeconds, 1e-9)
}

func (s *PipelineTestSuite) TestTimelineStage_MissingAudioFails() {
	ctx := context.Background()
	task := s.newTask(domain.StatusVisualsReady)
	img := filepath.Join(task.FolderPath, "scene_0_img_0.jpg")
	s.touch(img)
	task.Script = domain.Script{Scenes: []domain.Scene{{
		Text: "x", Keywords: []string{"k"}, ImageCount: 1,
		AudioPath: filepath.Join(task.FolderPath, "audio_0.mp3"), AudioSeconds: 2,
		ImagePaths: []string{img},
	}}}

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusVisualsReady).Return(task, nil)

	res, err := s.pipeline.RunStage(ctx, "timeline")
	s.Require().NoError(err)
	s.ErrorIs(res.Err, domain.ErrMissingMedia)
}

func (s *PipelineTestSuite) TestAssemblyStage_BurnsCaptions() {
	ctx := context.Background()
	s.allowEvents()
	task := s.newTask(domain.StatusReadyToAssemble)
	raw := filepath.Join(task.FolderPath, assembledFile)
	final := filepath.Join(task.FolderPath, finalFile)
	words := []domain.CaptionWord{{Text: "water", Start: 0, End: 0.4}}

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusReadyToAssemble).Return(task, nil)
	s.renderer.EXPECT().Compose(ctx, task.Script.Scenes, raw).Return(nil)
	s.transcriber.EXPECT().Transcribe(ctx, raw).Return(words, nil)
	s.renderer.EXPECT().BurnCaptions(ctx, raw, words, final).Return(nil)

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusReadyToAssemble, domain.StatusReadyToUpload, &update)

	res, err := s.pipeline.RunStage(ctx, "assembly")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
	s.Require().NotNil(update.FinalVideoPath)
	s.Equal(final, *update.FinalVideoPath)
}

func (s *PipelineTestSuite) TestAssemblyStage_NoWordsKeepsRawVideo() {
	ctx := context.Background()
	s.allowEvents()
	task := s.newTask(domain.StatusReadyToAssemble)
	raw := filepath.Join(task.FolderPath, assembledFile)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusReadyToAssemble).Return(task, nil)
	s.renderer.EXPECT().Compose(ctx, gomock.Any(), raw).Return(nil)
	s.transcriber.EXPECT().Transcribe(ctx, raw).Return(nil, nil)

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusReadyToAssemble, domain.StatusReadyToUpload, &update)

	res, err := s.pipeline.RunStage(ctx, "assembly")
	s.Require().NoError(err)
	s.Equal(1, res.Report.Skipped)
	s.Equal(raw, *update.FinalVideoPath)
}

func (s *PipelineTestSuite) TestAssemblyStage_ComposeFailure() {
	ctx := context.Background()
	task := s.newTask(domain.StatusReadyToAssemble)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusReadyToAssemble).Return(task, nil)
	s.renderer.EXPECT().Compose(ctx, gomock.Any(), gomock.Any()).Return(errors.New("ffmpeg exited 1"))

	res, err := s.pipeline.RunStage(ctx, "assembly")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeFailed, res.Outcome)
}

func (s *PipelineTestSuite) renderedTask(status domain.Status) *domain.Task {
	task := s.scriptedTask()
	task.Status = status
	video := filepath.Join(task.FolderPath, finalFile)
	s.touch(video)
	task.FinalVideoPath = &video
	task.Metadata = domain.Metadata{
		Title:       "Water on Mars!",
		Description: "Liquid water under the ice.",
		Hashtags:    "#mars #nasa",
		Tags:        []string{"mars", "nasa"},
	}
	return task
}

func (s *PipelineTestSuite) TestPackagingStage_WritesFilesAndArchives() {
	ctx := context.Background()
	s.allowEvents()
	task := s.renderedTask(domain.StatusReadyToUpload)
	manifest := filepath.Join(task.FolderPath, manifestFile)
	meta := filepath.Join(task.FolderPath, metadataFile)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusReadyToUpload).Return(task, nil)
	s.archiver.EXPECT().Archive(ctx, task.ID, []string{*task.FinalVideoPath, manifest, meta}).
		Return("https://archive.local/shorts/"+task.ID+"/final_video.mp4", nil)

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusReadyToUpload, domain.StatusCompletedPackaged, &update)

	res, err := s.pipeline.RunStage(ctx, "packaging")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)

	s.Require().NotNil(update.PackagePath)
	s.Equal(manifest, *update.PackagePath)
	s.Require().NotNil(update.ArchiveURL)
	s.Contains(*update.ArchiveURL, task.ID)

	text, err := os.ReadFile(meta)
	s.Require().NoError(err)
	s.Contains(string(text), "TITLE: Water on Mars!")
	s.Contains(string(text), "SOURCE: https://example.com/mars")
	s.Contains(string(text), "TAGS: mars, nasa")

	body, err := os.ReadFile(manifest)
	s.Require().NoError(err)
	var got packageManifest
	s.Require().NoError(json.Unmarshal(body, &got))
	s.Equal(task.ID, got.TaskID)
	s.Equal("Water on Mars!", got.UploadTitle)
	s.Equal(2, got.Scenes)
	s.True(s.now.Equal(got.PackagedAt))
}

func (s *PipelineTestSuite) TestPackagingStage_ArchiveFailureStillAdvances() {
	ctx := context.Background()
	s.allowEvents()
	task := s.renderedTask(domain.StatusReadyToUpload)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusReadyToUpload).Return(task, nil)
	s.archiver.EXPECT().Archive(ctx, task.ID, gomock.Any()).Return("", errors.New("bucket unreachable"))

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusReadyToUpload, domain.StatusCompletedPackaged, &update)

	res, err := s.pipeline.RunStage(ctx, "packaging")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
	s.Equal(1, res.Report.Skipped)
	s.Nil(update.ArchiveURL)
	s.NotNil(update.PackagePath)
}

func (s *PipelineTestSuite) TestPackagingStage_WithoutArchiver() {
	ctx := context.Background()
	s.allowEvents()
	task := s.renderedTask(domain.StatusReadyToUpload)
	p := s.newPipeline([]Source{s.source}, nil)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusReadyToUpload).Return(task, nil)
	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusReadyToUpload, domain.StatusCompletedPackaged, &update)

	res, err := p.RunStage(ctx, "packaging")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
	s.Nil(update.ArchiveURL)
}

func (s *PipelineTestSuite) TestPackagingStage_MissingVideoFails() {
	ctx := context.Background()
	task := s.renderedTask(domain.StatusReadyToUpload)
	s.Require().NoError(os.Remove(*task.FinalVideoPath))

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusReadyToUpload).Return(task, nil)

	res, err := s.pipeline.RunStage(ctx, "packaging")
	s.Require().NoError(err)
	s.ErrorIs(res.Err, domain.ErrMissingMedia)
}

func (s *PipelineTestSuite) TestPublishStage_BuildsUploadRequest() {
	ctx := context.Background()
	s.allowEvents()
	task := s.renderedTask(domain.StatusCompletedPackaged)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusCompletedPackaged).Return(task, nil)
	s.uploader.EXPECT().Upload(ctx, domain.UploadRequest{
		VideoPath:   *task.FinalVideoPath,
		Title:       "Water on Mars!",
		Description: task.Content + "\n\n#Shorts\n\nSource: https://example.com/mars",
		Tags:        []string{"mars", "nasa", "Shorts", "space"},
		CategoryID:  "28",
		Privacy:     "private",
	}).Return(&domain.UploadResult{VideoID: "yt-1"}, nil)

	var update domain.TaskUpdate
	s.captureAdvance(task, domain.StatusCompletedPackaged, domain.StatusUploaded, &update)

	res, err := s.pipeline.RunStage(ctx, "publish")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAdvanced, res.Outcome)
	s.Equal("yt-1", *update.YouTubeID)
	s.Equal(s.now, *update.UploadedAt)
}

func (s *PipelineTestSuite) TestPublishStage_EmptyVideoIDFails() {
	ctx := context.Background()
	task := s.renderedTask(domain.StatusCompletedPackaged)

	s.tasks.EXPECT().ClaimNext(ctx, domain.StatusCompletedPackaged).Return(task, nil)
	s.uploader.EXPECT().Upload(ctx, gomock.Any()).Return(&domain.UploadResult{}, nil)

	res, err := s.pipeline.RunStage(ctx, "publish")
	s.Require().NoError(err)
	s.Equal(domain.OutcomeFailed, res.Outcome)
}

func (s *PipelineTestSuite) TestUploadRequest_Limits() {
	task := s.renderedTask(domain.StatusCompletedPackaged)
	task.Metadata.Title = strings.Repeat("t", 150)
	task.Content = strings.Repeat("c", 5000)
	task.SourceURL = ""

	req := s.pipeline.uploadRequest(task)
	s.Len([]rune(req.Title), 100)
	s.Equal(strings.Repeat("c", 4000)+"\n\n#Shorts", req.Description)
}

func (s *PipelineTestSuite) TestCategoryFor() {
	s.Equal("26", s.pipeline.categoryFor("cooking"))
	s.Equal("15", s.pipeline.categoryFor("nature"))
	s.Equal("22", s.pipeline.categoryFor("knitting"))
}

func (s *PipelineTestSuite) TestEmit_StampsTimestamp() {
	ctx := context.Background()
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, ev domain.TaskEvent) error {
		s.Equal(s.now.UTC(), ev.Timestamp)
		return errors.New("broker gone")
	})

	s.pipeline.emit(ctx, domain.TaskEvent{Kind: domain.EventAdvanced, TaskID: "t"})
}

func (s *PipelineTestSuite) TestEmit_WithoutPublisher() {
	p := s.newPipeline(nil, nil)
	p.publisher = nil
	s.NotPanics(func() {
		p.emit(context.Background(), domain.TaskEvent{Kind: domain.EventAdvanced})
	})
}
