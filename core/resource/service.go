package resource

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core"
)

// Settings keys.
const (
	KeyForest    = "class_config"
	KeyBanners   = "banners"
	KeyAppImages = "app_images"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrCategoryHidden  = errors.New("category is hidden for this class")
)

type (
	// Repository is the external settings store: opaque values by key.
	// GetSetting returns ErrSettingNotFound when the key is absent.
	Repository interface {
		GetSetting(ctx context.Context, key string) ([]byte, error)
		SetSetting(ctx context.Context, key string, value []byte) error
	}

	// Cache keeps the last forest fetched from the settings store.
	Cache interface {
		Read() ([]byte, error)
		Write(data []byte) error
	}

	// Uploader stores a file and returns its public URL. Failures are *UploadError.
	Uploader interface {
		Upload(ctx context.Context, name string, r io.Reader) (string, error)
	}

	// Service owns the in-memory forest, its persistence and the customization settings.
	// It is safe for concurrent use; editor and viewer sessions go through it.
	Service struct {
		repo     Repository
		cache    Cache
		uploader Uploader
		logger   core.Logger
		labels   *Labels

		mu           sync.Mutex
		store        *Store
		editor       *Editor
		banners      []string
		appImages    map[string]string
		saving       bool
		fromCache    bool
		savedVersion uint64
		saves        uint64

		// custVersion counts banner and app image edits
		custVersion      uint64
		savedCustVersion uint64
	}
)

func NewService(repo Repository, cache Cache, uploader Uploader, logger core.Logger) *Service {
	store := NewStore(nil)
	return &Service{
		repo:      repo,
		cache:     cache,
		uploader:  uploader,
		logger:    logger,
		labels:    NewLabels(),
		store:     store,
		editor:    NewEditor(store),
		banners:   []string{},
		appImages: map[string]string{},
	}
}

// Load fetches the forest, banners and app images from the settings store. The forest is
// written to the local cache on success; on failure the cached forest is used instead.
func (svc *Service) Load(ctx context.Context) error {
	_, err := svc.load(ctx, false)
	return err
}

// Refresh reloads from the settings store unless there are unsaved edits or a save is in
// flight. It reports whether a reload happened.
func (svc *Service) Refresh(ctx context.Context) (bool, error) {
	svc.mu.Lock()
	skip := svc.saving || svc.dirty()
	svc.mu.Unlock()
	if skip {
		return false, nil
	}
	return svc.load(ctx, true)
}

// load fetches every setting then applies them. With keepEdits nothing is applied when the
// in-memory state was edited or saved while fetching.
func (svc *Service) load(ctx context.Context, keepEdits bool) (bool, error) {
	svc.mu.Lock()
	version, custVersion, saves := svc.store.Version(), svc.custVersion, svc.saves
	svc.mu.Unlock()

	forest, fromCache, err := svc.fetchForest(ctx)
	if err != nil {
		return false, err
	}

	var banners []string
	hasBanners, err := svc.getJSON(ctx, KeyBanners, &banners)
	if err != nil {
		svc.logger.Warn("loading banners", err)
	}
	var appImages map[string]string
	hasAppImages, err := svc.getJSON(ctx, KeyAppImages, &appImages)
	if err != nil {
		svc.logger.Warn("loading app images", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if keepEdits {
		if svc.saving || svc.dirty() || svc.saves != saves ||
			svc.store.Version() != version || svc.custVersion != custVersion {
			svc.logger.Info("resources changed while refreshing, refresh skipped")
			return false, nil
		}
	} else if svc.saving {
		return false, ErrBusy
	}

	svc.store.Replace(forest)
	svc.savedVersion = svc.store.Version()
	svc.savedCustVersion = svc.custVersion
	svc.fromCache = fromCache
	if hasBanners {
		if banners == nil {
			banners = []string{}
		}
		svc.banners = banners
	}
	if hasAppImages {
		if appImages == nil {
			appImages = map[string]string{}
		}
		svc.appImages = appImages
	}
	return true, nil
}

// fetchForest reads the forest from the settings store, falling back to the local cache
// when the store is unreachable or holds a forest that cannot be decoded.
func (svc *Service) fetchForest(ctx context.Context) (Forest, bool, error) {
	data, err := svc.repo.GetSetting(ctx, KeyForest)
	switch {
	case err == nil:
		forest, dErr := DecodeForest(data)
		if dErr == nil {
			if svc.cache != nil {
				if err := svc.cache.Write(data); err != nil {
					svc.logger.Warn("writing forest cache", err)
				}
			}
			return forest, false, nil
		}
		err = errors.Wrap(dErr, "decoding forest")
	case errors.Is(err, ErrSettingNotFound):
		return make(Forest), false, nil
	}

	svc.logger.Warn("fetching forest, falling back to local cache", err)
	if svc.cache == nil {
		return nil, false, errors.Wrap(err, "fetching forest")
	}
	cached, cErr := svc.cache.Read()
	if cErr != nil {
		return nil, false, errors.Wrapf(err, "fetching forest (cache: %v)", cErr)
	}
	forest, dErr := DecodeForest(cached)
	if dErr != nil {
		return nil, false, errors.Wrap(dErr, "decoding cached forest")
	}
	return forest, true, nil
}

// getJSON decodes the setting at key into v and reports whether the key was present.
func (svc *Service) getJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := svc.repo.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return false, nil
		}
		return false, errors.Wrapf(err, "getting %q", key)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "decoding %q", key)
	}
	return true, nil
}

// Save writes the forest, banners and app images back to the settings store. Edits are
// refused while it runs. On failure the in-memory state is kept and a *SaveError returned.
func (svc *Service) Save(ctx context.Context) error {
	svc.mu.Lock()
	if svc.saving {
		svc.mu.Unlock()
		return ErrBusy
	}
	svc.saving = true
	forest := svc.store.Forest()
	version, custVersion := svc.store.Version(), svc.custVersion
	banners := append([]string{}, svc.banners...)
	appImages := make(map[string]string, len(svc.appImages))
	for k, v := range svc.appImages {
		appImages[k] = v
	}
	svc.mu.Unlock()

	defer func() {
		svc.mu.Lock()
		svc.saving = false
		svc.mu.Unlock()
	}()

	forestData, err := forest.Encode()
	if err != nil {
		return err
	}
	bannersData, _ := json.Marshal(banners)
	appImagesData, _ := json.Marshal(appImages)

	for _, kv := range []struct {
		key  string
		data []byte
	}{
		{KeyForest, forestData},
		{KeyBanners, bannersData},
		{KeyAppImages, appImagesData},
	} {
		if err := svc.repo.SetSetting(ctx, kv.key, kv.data); err != nil {
			svc.logger.Error("saving settings", err, map[string]interface{}{"key": kv.key})
			return &SaveError{Key: kv.key, Err: err}
		}
	}

	if svc.cache != nil {
		if err := svc.cache.Write(forestData); err != nil {
			svc.logger.Warn("writing forest cache", err)
		}
	}

	svc.mu.Lock()
	svc.savedVersion = version
	svc.savedCustVersion = custVersion
	svc.saves++
	svc.fromCache = false
	svc.mu.Unlock()
	return nil
}

func (svc *Service) Saving() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.saving
}

// Dirty reports whether the forest, banners or app images changed since they were last
// loaded or saved.
func (svc *Service) Dirty() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.dirty()
}

func (svc *Service) dirty() bool {
	return svc.store.Version() != svc.savedVersion || svc.custVersion != svc.savedCustVersion
}

// FromCache reports whether the forest in memory came from the local cache.
func (svc *Service) FromCache() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.fromCache
}

// Snapshot returns a deep copy of the forest.
func (svc *Service) Snapshot() Forest {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.store.Forest()
}

// ImportCategory replaces the root items of a category.
func (svc *Service) ImportCategory(class, category string, items []Node) error {
	if err := checkClassCategory(class, category); err != nil {
		return err
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.saving {
		return ErrBusy
	}
	svc.store.SetChildren(class, category, nil, items)
	return nil
}

// Banners

func (svc *Service) Banners() []string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]string{}, svc.banners...)
}

func (svc *Service) AddBanner(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return core.NewFieldError("url", "this field is required")
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.saving {
		return ErrBusy
	}
	svc.banners = append(svc.banners, url)
	svc.custVersion++
	return nil
}

// RemoveBanner removes the banner at index.
func (svc *Service) RemoveBanner(index int) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.saving {
		return ErrBusy
	}
	if index < 0 || index >= len(svc.banners) {
		return errors.Wrapf(ErrNodeNotFound, "banner %d", index)
	}
	svc.banners = append(svc.banners[:index:index], svc.banners[index+1:]...)
	svc.custVersion++
	return nil
}

// App images

func (svc *Service) AppImages() map[string]string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make(map[string]string, len(svc.appImages))
	for k, v := range svc.appImages {
		out[k] = v
	}
	return out
}

// SetAppImage sets the cover image of a card; url "" removes it.
func (svc *Service) SetAppImage(key, url string) error {
	if !IsAppImageKey(key) {
		return core.NewFieldError("key", "unknown app image")
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.saving {
		return ErrBusy
	}
	if url = strings.TrimSpace(url); url == "" {
		delete(svc.appImages, key)
	} else {
		svc.appImages[key] = url
	}
	svc.custVersion++
	return nil
}

// Visibility

func (svc *Service) SetCategoryHidden(class, category string, hidden bool) error {
	if err := checkClassCategory(class, category); err != nil {
		return err
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.saving {
		return ErrBusy
	}
	svc.store.SetHidden(class, category, hidden)
	return nil
}

// HiddenCategories returns the categories hidden for class by its bucket.
func (svc *Service) HiddenCategories(class string) ([]string, error) {
	if !IsClass(class) {
		return nil, errors.Wrapf(ErrUnknownClass, "%q", class)
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.store.Bucket(class).HiddenFeatureIDs, nil
}

// VisibleCategories returns the categories a learner of class may open, labels localized
// for langs.
func (svc *Service) VisibleCategories(class string, langs ...string) ([]Category, error) {
	if !IsClass(class) {
		return nil, errors.Wrapf(ErrUnknownClass, "%q", class)
	}
	svc.mu.Lock()
	bucket := svc.store.Bucket(class)
	svc.mu.Unlock()

	cats := VisibleCategories(class, bucket)
	if len(langs) > 0 {
		for i := range cats {
			cats[i].Label = svc.labels.Label(cats[i].ID, langs...)
		}
	}
	return cats, nil
}

// Sessions

// OpenEditor starts an editor session at the root of a category.
func (svc *Service) OpenEditor(class, category string) (*EditorSession, error) {
	if err := checkClassCategory(class, category); err != nil {
		return nil, err
	}
	return NewEditorSession(class, category), nil
}

// Edit runs fn against the editor with the session's busy flag set from the save state.
func (svc *Service) Edit(sess *EditorSession, fn func(*Editor) error) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	sess.Busy = svc.saving
	err := fn(svc.editor)
	if errors.Is(err, ErrStalePath) {
		svc.logger.Warn("stale editor path, reset to root", map[string]interface{}{
			"class": sess.Class, "category": sess.Category,
		})
	}
	return err
}

// OpenViewer starts a learner viewer on a snapshot of a visible category.
func (svc *Service) OpenViewer(class, category string, langs ...string) (*Viewer, error) {
	if err := checkClassCategory(class, category); err != nil {
		return nil, err
	}
	svc.mu.Lock()
	bucket := svc.store.Bucket(class)
	tree := svc.store.Category(class, category)
	svc.mu.Unlock()

	if HardHidden(class, category) || bucket.IsHidden(category) {
		return nil, errors.Wrapf(ErrCategoryHidden, "%s/%s", class, category)
	}
	return NewViewer(class, category, svc.labels.Label(category, langs...), tree), nil
}

// Upload stores a file as uploads/<random>-<unix millis>.<ext> and returns its public URL.
func (svc *Service) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if svc.uploader == nil {
		return "", NewUploadError(UploadGeneric, "", errors.New("uploads are not configured"))
	}
	url, err := svc.uploader.Upload(ctx, UploadName(filename, time.Now()), r)
	if err != nil {
		svc.logger.Error("uploading file", err, map[string]interface{}{"filename": filename})
		return "", err
	}
	return url, nil
}

// UploadName returns the storage object name of an uploaded file.
func UploadName(filename string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:11]
	name := random + "-" + strconv.FormatInt(now.UnixNano()/int64(time.Millisecond), 10)
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		name += "." + strings.ToLower(ext)
	}
	return "uploads/" + name
}

func checkClassCategory(class, category string) error {
	if !IsClass(class) {
		return errors.Wrapf(ErrUnknownClass, "%q", class)
	}
	if category == "" {
		return ErrNoCategory
	}
	if _, ok := LookupCategory(category); !ok {
		return errors.Wrapf(ErrUnknownCategory, "%q", category)
	}
	return nil
}
