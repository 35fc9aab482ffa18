// 文件路径: internal/service/account.go
// 模块说明: 账号上传、下载、移动、删除与按条件选取。
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/HardPulse/mazpan/internal/account"
	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/telemetry"
)

// Selection criteria accepted by AccountService.Select.
const (
	CriterionAll      = "all"
	CriterionGeo      = "geo"
	CriterionCooldown = "cooldown"
)

// AccountService stores, lists and exports uploaded account records.
type AccountService interface {
	Upload(ctx context.Context, userID, text, folderID string) (int, error)
	List(ctx context.Context, userID, folderID string) ([]AccountView, error)
	Move(ctx context.Context, userID string, ids []string, folderID string) (int64, error)
	Delete(ctx context.Context, userID string, ids []string) (int64, error)
	Select(ctx context.Context, userID string, input SelectInput) ([]string, error)
	Download(ctx context.Context, userID string, ids []string) (*Download, error)
}

// SelectInput chooses records by criterion; Value is the geo for CriterionGeo.
type SelectInput struct {
	Criterion string `json:"criterion"`
	Value     string `json:"value"`
	FolderID  string `json:"folder_id"`
}

// Download is an export file.
type Download struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// AccountView 是带冷却信息的账号记录。
type AccountView struct {
	ID                string  `json:"id"`
	FolderID          string  `json:"folder_id"`
	FolderName        string  `json:"folder_name"`
	UploadedAt        int64   `json:"uploaded_at"`
	RawData           string  `json:"raw_data"`
	FormatType        int     `json:"format_type"`
	Email             string  `json:"email"`
	EmailPassword     string  `json:"email_password"`
	Login             string  `json:"login"`
	AccountPassword   string  `json:"account_password"`
	Geo               *string `json:"geo"`
	Data1             string  `json:"data1"`
	Data2             string  `json:"data2"`
	CooldownCompleted bool    `json:"cooldown_completed"`
	TimeSinceUpload   string  `json:"time_since_upload"`
}

type accountService struct {
	store  repository.Store
	clock  Clock
	logger *slog.Logger
}

// NewAccountService 构造账号服务。
func NewAccountService(store repository.Store, clock Clock, logger *slog.Logger) AccountService {
	return &accountService{store: store, clock: clock, logger: discardLogger(logger)}
}

// resolveFolder 返回目标文件夹；folderID 为空时使用 Main。
func (s *accountService) resolveFolder(ctx context.Context, userID, folderID string, now time.Time) (*repository.Folder, error) {
	if strings.TrimSpace(folderID) == "" {
		return ensureMainFolder(ctx, s.store.Folders(), userID, now)
	}
	return ownedFolder(ctx, s.store.Folders(), userID, folderID)
}

func (s *accountService) Upload(ctx context.Context, userID, text, folderID string) (int, error) {
	parsed := account.ParseText(text)
	if len(parsed) == 0 {
		return 0, ErrEmptyUpload
	}
	now := s.clock.now()
	folder, err := s.resolveFolder(ctx, userID, folderID, now)
	if err != nil {
		return 0, err
	}

	records := make([]*repository.AccountRecord, 0, len(parsed))
	for _, rec := range parsed {
		records = append(records, &repository.AccountRecord{
			ID:              newID(),
			UserID:          userID,
			FolderID:        folder.ID,
			UploadedAt:      now.Unix(),
			RawData:         rec.Raw,
			FormatType:      rec.FieldCount,
			Email:           rec.Email,
			EmailPassword:   rec.EmailPassword,
			Login:           rec.Login,
			AccountPassword: rec.AccountPassword,
			Geo:             rec.Geo,
			Data1:           rec.Data1,
			Data2:           rec.Data2,
		})
	}
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		return tx.Accounts().CreateBatch(ctx, records)
	})
	if err != nil {
		return 0, err
	}
	telemetry.AccountsUploaded.Add(float64(len(records)))
	s.logger.InfoContext(ctx, "accounts uploaded", "user_id", userID, "folder_id", folder.ID, "count", len(records))
	return len(records), nil
}

// evaluated pairs a record with its cooldown state.
type evaluated struct {
	record   *repository.AccountRecord
	folder   *repository.Folder
	cooldown account.Cooldown
}

// load 读取账号并用同一个冷却函数计算状态，列表与 cooldown 筛选共用。
func (s *accountService) load(ctx context.Context, filter repository.AccountFilter, now time.Time) ([]evaluated, error) {
	folders, err := s.store.Folders().ListByUser(ctx, filter.UserID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*repository.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	records, err := s.store.Accounts().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]evaluated, 0, len(records))
	for _, rec := range records {
		item := evaluated{record: rec, folder: byID[rec.FolderID]}
		if item.folder == nil {
			item.cooldown = account.MissingFolderCooldown()
		} else {
			item.cooldown = account.EvaluateCooldown(time.Unix(rec.UploadedAt, 0), item.folder.CooldownHours, now)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *accountService) List(ctx context.Context, userID, folderID string) ([]AccountView, error) {
	filter := repository.AccountFilter{UserID: userID}
	if folderID != "" {
		folder, err := ownedFolder(ctx, s.store.Folders(), userID, folderID)
		if err != nil {
			return nil, err
		}
		filter.FolderID = folder.ID
	}
	items, err := s.load(ctx, filter, s.clock.now())
	if err != nil {
		return nil, err
	}
	views := make([]AccountView, 0, len(items))
	for _, it := range items {
		rec := it.record
		view := AccountView{
			ID:                rec.ID,
			FolderID:          rec.FolderID,
			UploadedAt:        rec.UploadedAt,
			RawData:           rec.RawData,
			FormatType:        rec.FormatType,
			Email:             rec.Email,
			EmailPassword:     rec.EmailPassword,
			Login:             rec.Login,
			AccountPassword:   rec.AccountPassword,
			Geo:               rec.Geo,
			Data1:             rec.Data1,
			Data2:             rec.Data2,
			CooldownCompleted: it.cooldown.Ready,
			TimeSinceUpload:   it.cooldown.String(),
		}
		if it.folder != nil {
			view.FolderName = it.folder.Name
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *accountService) Move(ctx context.Context, userID string, ids []string, folderID string) (int64, error) {
	folder, err := ownedFolder(ctx, s.store.Folders(), userID, folderID)
	if err != nil {
		return 0, err
	}
	return s.store.Accounts().Move(ctx, userID, ids, folder.ID)
}

func (s *accountService) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	return s.store.Accounts().Delete(ctx, userID, ids)
}

func (s *accountService) Select(ctx context.Context, userID string, input SelectInput) ([]string, error) {
	filter := repository.AccountFilter{UserID: userID}
	if input.FolderID != "" {
		folder, err := ownedFolder(ctx, s.store.Folders(), userID, input.FolderID)
		if err != nil {
			return nil, err
		}
		filter.FolderID = folder.ID
	}

	criterion := strings.ToLower(strings.TrimSpace(input.Criterion))
	switch criterion {
	case CriterionAll, CriterionCooldown:
	case CriterionGeo:
		// 空值不按地区过滤，等同 all。
		if geo := strings.TrimSpace(input.Value); geo != "" {
			filter.Geo = &geo
		}
	default:
		return nil, ErrCriterionInvalid
	}

	items, err := s.load(ctx, filter, s.clock.now())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if criterion == CriterionCooldown && !it.cooldown.Ready {
			continue
		}
		ids = append(ids, it.record.ID)
	}
	return ids, nil
}

func (s *accountService) Download(ctx context.Context, userID string, ids []string) (*Download, error) {
	if len(ids) == 0 {
		return nil, ErrIDsRequired
	}
	records, err := s.store.Accounts().List(ctx, repository.AccountFilter{UserID: userID, IDs: ids})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*repository.AccountRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	lines := make([]account.Record, 0, len(records))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		lines = append(lines, toRecord(rec))
	}
	return &Download{
		Content:  account.JoinLines(lines),
		Filename: account.ExportFilename(s.clock.now()),
	}, nil
}

func toRecord(rec *repository.AccountRecord) account.Record {
	return account.Record{
		Raw:             rec.RawData,
		FieldCount:      rec.FormatType,
		Email:           rec.Email,
		EmailPassword:   rec.EmailPassword,
		Login:           rec.Login,
		AccountPassword: rec.AccountPassword,
		Geo:             rec.Geo,
		Data1:           rec.Data1,
		Data2:           rec.Data2,
	}
}
