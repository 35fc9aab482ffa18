// 文件路径: internal/service/folder.go
// 模块说明: 文件夹管理与冷却时间。
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/HardPulse/mazpan/internal/repository"
)

// FolderService manages per-user folders and their cooldown windows.
type FolderService interface {
	List(ctx context.Context, userID string) ([]FolderView, error)
	Create(ctx context.Context, userID, name string) (*FolderView, error)
	// Delete re-homes the folder's records to Main and returns how many moved.
	Delete(ctx context.Context, userID, folderID string) (int64, error)
	SetCooldown(ctx context.Context, userID, folderID string, hours int) (*FolderView, error)
}

// FolderView 是文件夹的对外表示。
type FolderView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CooldownHours int    `json:"cooldown_hours"`
	CreatedAt     int64  `json:"created_at"`
	IsMain        bool   `json:"is_main"`
}

func newFolderView(f *repository.Folder) FolderView {
	return FolderView{
		ID:            f.ID,
		Name:          f.Name,
		CooldownHours: f.CooldownHours,
		CreatedAt:     f.CreatedAt,
		IsMain:        f.Name == MainFolderName,
	}
}

type folderService struct {
	store  repository.Store
	clock  Clock
	logger *slog.Logger
}

// NewFolderService 构造文件夹服务。
func NewFolderService(store repository.Store, clock Clock, logger *slog.Logger) FolderService {
	return &folderService{store: store, clock: clock, logger: discardLogger(logger)}
}

func (s *folderService) List(ctx context.Context, userID string) ([]FolderView, error) {
	if _, err := ensureMainFolder(ctx, s.store.Folders(), userID, s.clock.now()); err != nil {
		return nil, err
	}
	folders, err := s.store.Folders().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]FolderView, 0, len(folders))
	for _, f := range folders {
		views = append(views, newFolderView(f))
	}
	return views, nil
}

func (s *folderService) Create(ctx context.Context, userID, name string) (*FolderView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFolderNameRequired
	}
	if strings.EqualFold(name, MainFolderName) {
		return nil, ErrFolderNameReserved
	}
	folder := &repository.Folder{
		ID:            newID(),
		UserID:        userID,
		Name:          name,
		CooldownHours: DefaultCooldownHours,
		CreatedAt:     s.clock.now().Unix(),
	}
	if err := s.store.Folders().Create(ctx, folder); err != nil {
		return nil, err
	}
	view := newFolderView(folder)
	return &view, nil
}

// ownedFolder 返回属于 userID 的文件夹；他人的文件夹按不存在处理。
func ownedFolder(ctx context.Context, folders repository.FolderRepository, userID, folderID string) (*repository.Folder, error) {
	folder, err := folders.FindByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFolderNotFound
		}
		return nil, err
	}
	if folder.UserID != userID {
		return nil, ErrFolderNotFound
	}
	return folder, nil
}

func (s *folderService) Delete(ctx context.Context, userID, folderID string) (int64, error) {
	folder, err := ownedFolder(ctx, s.store.Folders(), userID, folderID)
	if err != nil {
		return 0, err
	}
	if folder.Name == MainFolderName {
		return 0, ErrMainFolderProtected
	}

	var moved int64
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		main, err := ensureMainFolder(ctx, tx.Folders(), userID, s.clock.now())
		if err != nil {
			return err
		}
		if moved, err = tx.Accounts().MoveFolder(ctx, folder.ID, main.ID); err != nil {
			return err
		}
		return tx.Folders().Delete(ctx, folder.ID)
	})
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "folder deleted", "user_id", userID, "folder_id", folder.ID, "rehomed", moved)
	return moved, nil
}

func (s *folderService) SetCooldown(ctx context.Context, userID, folderID string, hours int) (*FolderView, error) {
	if hours < 0 {
		return nil, ErrCooldownNegative
	}
	folder, err := ownedFolder(ctx, s.store.Folders(), userID, folderID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Folders().UpdateCooldown(ctx, folder.ID, hours); err != nil {
		return nil, err
	}
	folder.CooldownHours = hours
	view := newFolderView(folder)
	return &view, nil
}
