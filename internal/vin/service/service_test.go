package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"vindex/internal/vin/decoder"
	"vindex/internal/vin/models"
	"vindex/internal/vin/store"
	"vindex/pkg/platform/sentinel"
)

// fakeDecoder counts invocations so tests can prove the remote provider is
// not called on a cache hit.
type fakeDecoder struct {
	mu     sync.Mutex
	calls  int
	record models.DecodedVehicle
	err    error
}

func (d *fakeDecoder) Decode(_ context.Context, vin string) (models.DecodedVehicle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return models.DecodedVehicle{}, d.err
	}
	record := d.record
	record.VIN = vin
	return record, nil
}

func (d *fakeDecoder) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// faultStore wraps the in-memory store with injectable failures.
type faultStore struct {
	store.Store
	lookupErr error
	insertErr error
	deleteErr error
	exportErr error
}

func (s *faultStore) Lookup(ctx context.Context, vin string) (models.DecodedVehicle, error) {
	if s.lookupErr != nil {
		return models.DecodedVehicle{}, s.lookupErr
	}
	return s.Store.Lookup(ctx, vin)
}

func (s *faultStore) Insert(ctx context.Context, record models.DecodedVehicle) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.Store.Insert(ctx, record)
}

func (s *faultStore) Delete(ctx context.Context, vin string) (bool, error) {
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	return s.Store.Delete(ctx, vin)
}

func (s *faultStore) ExportAll(ctx context.Context) ([]models.DecodedVehicle, error) {
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	return s.Store.ExportAll(ctx)
}

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	decoder *fakeDecoder
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.decoder = &fakeDecoder{record: models.DecodedVehicle{
		Make:      "MakeValue",
		Model:     "ModelValue",
		ModelYear: "2023",
		BodyClass: "BodyClassValue",
	}}
	s.service = New(s.store, s.decoder, slog.New(slog.DiscardHandler), nil, s.T().TempDir())
}

func (s *ServiceSuite) TestResolveMissThenHit() {
	ctx := context.Background()

	first, err := s.service.Resolve(ctx, "1XPWD40X1ED215307")
	s.Require().NoError(err)
	s.Equal("1XPWD40X1ED215307", first.VIN)
	s.Equal("MakeValue", first.Make)
	s.Equal("ModelValue", first.Model)
	s.Equal("2023", first.ModelYear)
	s.Equal("BodyClassValue", first.BodyClass)
	s.False(first.FromCache)

	stored, err := s.store.Lookup(ctx, "1XPWD40X1ED215307")
	s.Require().NoError(err)
	s.Equal("MakeValue", stored.Make)

	second, err := s.service.Resolve(ctx, "1XPWD40X1ED215307")
	s.Require().NoError(err)
	s.True(second.FromCache)
	s.Equal(first.Make, second.Make)
	s.Equal(first.Model, second.Model)
	s.Equal(first.ModelYear, second.ModelYear)
	s.Equal(first.BodyClass, second.BodyClass)

	s.Equal(1, s.decoder.callCount(), "cache hit must not call the remote decoder")
}

func (s *ServiceSuite) TestResolveDecodeFailureSkipsStoreWrite() {
	ctx := context.Background()

	s.Run("malformed provider response", func() {
		s.decoder.err = &decoder.ValidationError{Message: "Invalid VIN data"}

		_, err := s.service.Resolve(ctx, "1XPWD40X1ED215307")
		s.Require().Error(err)
		s.Equal("Invalid VIN data", err.Error())

		_, err = s.store.Lookup(ctx, "1XPWD40X1ED215307")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("provider reported error", func() {
		s.decoder.err = &decoder.ValidationError{Message: "boom"}

		_, err := s.service.Resolve(ctx, "5YJ3E1EA7KF000001")
		s.Require().Error(err)
		s.Equal("boom", err.Error())

		_, err = s.store.Lookup(ctx, "5YJ3E1EA7KF000001")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestResolveInsertFailureFailsRequest() {
	faulty := &faultStore{Store: s.store, insertErr: errors.New("disk full")}
	svc := New(faulty, s.decoder, slog.New(slog.DiscardHandler), nil, s.T().TempDir())

	_, err := svc.Resolve(context.Background(), "1XPWD40X1ED215307")
	s.Require().Error(err)

	var validationErr *decoder.ValidationError
	s.False(errors.As(err, &validationErr), "storage fault must not look like a decode failure")
}

func (s *ServiceSuite) TestResolveLookupFaultPropagates() {
	faulty := &faultStore{Store: s.store, lookupErr: errors.New("connection reset")}
	svc := New(faulty, s.decoder, slog.New(slog.DiscardHandler), nil, s.T().TempDir())

	_, err := svc.Resolve(context.Background(), "1XPWD40X1ED215307")
	s.Require().Error(err)
	s.Equal(0, s.decoder.callCount(), "storage fault must not trigger a remote call")
}

func (s *ServiceSuite) TestRemoveMessages() {
	ctx := context.Background()

	s.Run("removed", func() {
		_, err := s.service.Resolve(ctx, "1XPWD40X1ED215307")
		s.Require().NoError(err)

		message, err := s.service.Remove(ctx, "1XPWD40X1ED215307")
		s.Require().NoError(err)
		s.Equal("Successfully removed VIN: 1XPWD40X1ED215307.", message)

		_, err = s.store.Lookup(ctx, "1XPWD40X1ED215307")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("never present", func() {
		message, err := s.service.Remove(ctx, "5YJ3E1EA7KF000001")
		s.Require().NoError(err)
		s.Equal("No record found with VIN: 5YJ3E1EA7KF000001. No deletion.", message)
	})

	s.Run("storage fault", func() {
		faulty := &faultStore{Store: s.store, deleteErr: errors.New("io error")}
		svc := New(faulty, s.decoder, slog.New(slog.DiscardHandler), nil, s.T().TempDir())

		_, err := svc.Remove(ctx, "1XPWD40X1ED215307")
		s.Require().Error(err)
	})
}

func (s *ServiceSuite) TestExport() {
	ctx := context.Background()

	s.Run("writes the parquet file", func() {
		_, err := s.service.Resolve(ctx, "1XPWD40X1ED215307")
		s.Require().NoError(err)

		path, err := s.service.Export(ctx)
		s.Require().NoError(err)
		s.Equal("vin_cache.parquet", filepath.Base(path))

		info, err := os.Stat(path)
		s.Require().NoError(err)
		s.Positive(info.Size())
	})

	s.Run("storage fault surfaces", func() {
		faulty := &faultStore{Store: s.store, exportErr: errors.New("scan failed")}
		svc := New(faulty, s.decoder, slog.New(slog.DiscardHandler), nil, s.T().TempDir())

		_, err := svc.Export(ctx)
		s.Require().Error(err)
	})
}
