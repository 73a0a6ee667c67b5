package domain

import "fmt"

// Field names an output that some stage writes.
type Field string

const (
	FieldScript      Field = "script_data"
	FieldMetadata    Field = "metadata"
	FieldSceneAudio  Field = "scene_audio"
	FieldSceneImages Field = "scene_images"
	FieldSceneTiming Field = "scene_timing"
	FieldFinalVideo  Field = "final_video_path"
	FieldPackage     Field = "package_path"
	FieldArchive     Field = "archive_url"
	FieldYouTubeID   Field = "youtube_id"
	FieldUploadedAt  Field = "uploaded_at"
)

// producedBy maps each status to the fields written by the transition into it.
var producedBy = map[Status][]Field{
	StatusScripted:          {FieldScript, FieldMetadata},
	StatusVoiced:            {FieldSceneAudio},
	StatusVisualsReady:      {FieldSceneImages},
	StatusReadyToAssemble:   {FieldSceneTiming},
	StatusReadyToUpload:     {FieldFinalVideo},
	StatusCompletedPackaged: {FieldPackage, FieldArchive},
	StatusUploaded:          {FieldYouTubeID, FieldUploadedAt},
}

// DownstreamFields lists every field produced after status s, in pipeline order.
func DownstreamFields(s Status) []Field {
	var out []Field
	for _, st := range statusOrder {
		if s.Before(st) {
			out = append(out, producedBy[st]...)
		}
	}
	return out
}

// Repair is an operator override that bypasses the transition table.
type Repair struct {
	Status   Status
	Script   *Script
	Metadata *Metadata
	Reason   string
}

// ApplyRepair forces t into r.Status, clears everything produced after that
// status and then applies the explicit overrides. The result must be
// internally consistent or t is left untouched. It returns the cleared fields.
func (t *Task) ApplyRepair(r Repair) ([]Field, error) {
	if !r.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, r.Status)
	}
	if r.Script != nil {
		if err := ValidateScenes(r.Script.Scenes); err != nil {
			return nil, err
		}
	}

	next := *t
	next.Script.Scenes = append([]Scene(nil), t.Script.Scenes...)

	cleared := DownstreamFields(r.Status)
	for _, f := range cleared {
		next.clear(f)
	}

	if r.Script != nil {
		next.Script = Script{Scenes: append([]Scene(nil), r.Script.Scenes...)}
	}
	if r.Metadata != nil {
		next.Metadata = *r.Metadata
	}
	next.Status = r.Status

	if err := next.CheckConsistent(); err != nil {
		return nil, err
	}
	*t = next
	return cleared, nil
}

func (t *Task) clear(f Field) {
	switch f {
	case FieldScript:
		t.Script = Script{}
	case FieldMetadata:
		t.Metadata = Metadata{}
	case FieldSceneAudio:
		for i := range t.Script.Scenes {
			t.Script.Scenes[i].AudioPath = ""
			t.Script.Scenes[i].AudioSeconds = 0
		}
	case FieldSceneImages:
		for i := range t.Script.Scenes {
			t.Script.Scenes[i].ImagePaths = nil
		}
	case FieldSceneTiming:
		for i := range t.Script.Scenes {
			t.Script.Scenes[i].ImageSeconds = 0
		}
	case FieldFinalVideo:
		t.FinalVideoPath = nil
	case FieldPackage:
		t.PackagePath = nil
	case FieldArchive:
		t.ArchiveURL = nil
	case FieldYouTubeID:
		t.YouTubeID = nil
	case FieldUploadedAt:
		t.UploadedAt = nil
	}
}

// CheckConsistent verifies that t holds every field required by its status
// and by all statuses before it.
func (t *Task) CheckConsistent() error {
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, t.Status)
	}
	snap := t.snapshot()
	for _, st := range statusOrder {
		if t.Status.Before(st) {
			break
		}
		if err := snap.Validate(st); err != nil {
			return err
		}
	}
	return nil
}
