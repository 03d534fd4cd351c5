package story

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/souffleinspire/bananaImgGenaration/internal/imagegen"
	"github.com/souffleinspire/bananaImgGenaration/internal/model"
	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

const StateFileName = "image_state.json"

var ErrNoState = fmt.Errorf("no image state recorded: %w", os.ErrNotExist)

func StatePath(outputDir string) string {
	return filepath.Join(outputDir, StateFileName)
}

// LoadState reads the state table for outputDir. ErrNoState is returned
// when nothing has been generated there yet.
func LoadState(outputDir string) (model.StateTable, error) {
	var table model.StateTable
	if err := runstore.ReadJSON(StatePath(outputDir), &table); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.StateTable{}, fmt.Errorf("%w: %s", ErrNoState, outputDir)
		}
		return model.StateTable{}, err
	}
	table.Recount()
	return table, nil
}

func loadOrInitState(outputDir, prefix string) (model.StateTable, error) {
	table, err := LoadState(outputDir)
	if err != nil {
		if !errors.Is(err, ErrNoState) {
			return model.StateTable{}, err
		}
		table = model.StateTable{}
	}
	if table.Prefix != prefix {
		// rows belong to another prefix; files on disk are re-adopted below
		table = model.StateTable{}
	}
	table.SchemaVersion = model.StateSchemaVersion
	table.Prefix = prefix
	return table, nil
}

func saveState(outputDir string, table *model.StateTable, now time.Time) error {
	table.Recount()
	table.UpdatedAt = now.UTC().Format(time.RFC3339)
	if err := runstore.WriteJSON(StatePath(outputDir), table); err != nil {
		return fmt.Errorf("save image state: %w", err)
	}
	return nil
}

func resetStaleRunningSlots(table *model.StateTable) error {
	for i := range table.Slots {
		if table.Slots[i].Status != model.StatusRunning {
			continue
		}
		if err := model.TransitionSlotStatus(&table.Slots[i], model.StatusFailed, "interrupted_previous_run"); err != nil {
			return fmt.Errorf("reset interrupted slot: %w", err)
		}
		if table.Slots[i].LastError == "" {
			table.Slots[i].LastError = "previous run interrupted while this image was generating"
		}
	}
	return nil
}

// reconcileWithDisk demotes generated slots whose file vanished and adopts
// on-disk files for slots that have no generated record.
func reconcileWithDisk(table *model.StateTable, outputDir, prefix string, sel Selection) error {
	onDisk, err := scanOutputDir(outputDir, prefix)
	if err != nil {
		return err
	}

	for i := range table.Slots {
		s := &table.Slots[i]
		if s.Status == model.StatusGenerated && !runstore.FileExists(s.Path) {
			if err := model.TransitionSlotStatus(s, model.StatusPending, "missing_local_file"); err != nil {
				return err
			}
			s.Path = ""
			s.GeneratedAt = ""
			s.LastError = "previously generated but image file is missing locally"
		}
		if s.Status == model.StatusGenerated {
			continue
		}

		names := onDisk[s.Index]
		if len(names) == 0 {
			continue
		}
		if err := model.TransitionSlotStatus(s, model.StatusGenerated, "adopted_from_disk"); err != nil {
			return err
		}
		s.Path = filepath.Join(outputDir, sel.pick(names))
		s.LastError = ""
	}
	return nil
}

// scanOutputDir groups "<prefix>_<digits>..." file names by index. Names
// within a group stay in lexicographic order.
func scanOutputDir(outputDir, prefix string) (map[int][]string, error) {
	names, err := runstore.ListFileNames(outputDir)
	if err != nil {
		return nil, err
	}
	out := make(map[int][]string)
	for _, name := range names {
		idx, ok := imagegen.ParseIndex(name, prefix)
		if !ok {
			continue
		}
		out[idx] = append(out[idx], name)
	}
	return out, nil
}
