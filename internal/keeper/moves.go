package keeper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oswin/keepmd/internal/apperr"
	"github.com/oswin/keepmd/internal/item"
	"github.com/oswin/keepmd/internal/storage"
	"github.com/oswin/keepmd/internal/title"
)

// Archive moves an Active item into the archive directory and drops it from
// the current collection.
func (k *Keeper) Archive(_ context.Context, id string) (storage.MoveResult, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	it, ok := k.find(id)
	if !ok {
		return storage.MoveResult{}, apperr.ErrNotFound
	}
	if it.View != item.ViewActive {
		return storage.MoveResult{}, fmt.Errorf("%w: only active items can be archived", apperr.ErrValidation)
	}

	res, err := k.store.Move(item.ViewActive.Dir(), it.Filename(), item.ViewArchive.Dir(), "")
	if err != nil {
		return res, err
	}

	k.remove(id)
	k.logMove("archived", id, res)
	return res, nil
}

// Trash soft-deletes an item from the Active or Archive view by moving its
// file into the trash directory.
func (k *Keeper) Trash(_ context.Context, id string) (storage.MoveResult, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	it, ok := k.find(id)
	if !ok {
		return storage.MoveResult{}, apperr.ErrNotFound
	}
	if it.View == item.ViewTrash {
		return storage.MoveResult{}, fmt.Errorf("%w: item is already in trash", apperr.ErrValidation)
	}

	res, err := k.store.Move(it.View.Dir(), it.Filename(), item.ViewTrash.Dir(), "")
	if err != nil {
		return res, err
	}

	k.remove(id)
	k.logMove("trashed", id, res)
	return res, nil
}

// Restore moves an item from the Trash or Archive view back into the Active
// view. When the id is already taken there the file is renamed with the usual
// numeric suffix, since ids are only unique within one view.
func (k *Keeper) Restore(_ context.Context, id string) (storage.MoveResult, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	it, ok := k.find(id)
	if !ok {
		return storage.MoveResult{}, apperr.ErrNotFound
	}
	if it.View == item.ViewActive {
		return storage.MoveResult{}, fmt.Errorf("%w: item is already active", apperr.ErrValidation)
	}

	taken, err := k.activeIDs()
	if err != nil {
		return storage.MoveResult{}, err
	}
	newID := title.EnsureUnique(it.ID, func(c string) bool {
		_, exists := taken[c]
		return exists
	})

	newName := ""
	if newID != it.ID {
		newName = newID + ".md"
	}
	res, err := k.store.Move(it.View.Dir(), it.Filename(), item.ViewActive.Dir(), newName)
	if err != nil {
		return res, err
	}

	k.remove(id)
	k.logMove("restored", id, res)
	return res, nil
}

// DeleteForever permanently deletes a trashed item's file.
func (k *Keeper) DeleteForever(_ context.Context, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	it, ok := k.find(id)
	if !ok {
		return apperr.ErrNotFound
	}
	if it.View != item.ViewTrash {
		return fmt.Errorf("%w: only trashed items can be deleted permanently", apperr.ErrValidation)
	}

	if err := k.store.Delete(item.ViewTrash.Dir(), it.Filename()); err != nil {
		return err
	}

	k.remove(id)
	k.log.Info("deleted permanently", slog.String("id", id))
	return nil
}

// EmptyTrash permanently deletes every file in the trash directory. Each
// item leaves the collection as its file goes, so a partial failure leaves
// memory consistent with what is still on disk.
func (k *Keeper) EmptyTrash(_ context.Context) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.view != item.ViewTrash {
		return 0, fmt.Errorf("%w: trash can only be emptied from the trash view", apperr.ErrValidation)
	}

	files, err := k.store.List(item.ViewTrash.Dir())
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	deleted := 0
	for _, f := range files {
		if err := k.store.Delete(item.ViewTrash.Dir(), f.Name); err != nil {
			return deleted, err
		}
		k.remove(trimExt(f.Name))
		deleted++
	}
	k.log.Info("trash emptied", slog.Int("deleted", deleted))
	return deleted, nil
}

// activeIDs lists the ids currently stored in the Active directory, used for
// collision checks when restoring from another view. Call with mutex held.
func (k *Keeper) activeIDs() (map[string]struct{}, error) {
	files, err := k.store.List(item.ViewActive.Dir())
	if err != nil {
		if isNotFound(err) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}
	out := make(map[string]struct{}, len(files))
	for _, f := range files {
		out[trimExt(f.Name)] = struct{}{}
	}
	return out, nil
}

func (k *Keeper) logMove(verb, id string, res storage.MoveResult) {
	k.log.Info(verb,
		slog.String("id", id),
		slog.Bool("atomic", res.Atomic))
}
