package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
)

func TestSession_CommitMakesWritesVisible(t *testing.T) {
	ctx := context.Background()
	s := New()

	writer, err := s.Begin(ctx)
	require.NoError(t, err)
	defer writer.Close(ctx)

	c := &domain.Company{Requisites: domain.Requisites{Name: "Acme"}}
	require.NoError(t, writer.SaveCompany(ctx, c))

	reader, err := s.Begin(ctx)
	require.NoError(t, err)
	defer reader.Close(ctx)

	got, err := reader.FindCompanies(ctx, store.RequisitesFilter{Name: "acme"})
	require.NoError(t, err)
	assert.Empty(t, got, "uncommitted write leaked into another session")

	own, err := writer.FindCompanies(ctx, store.RequisitesFilter{Name: "ACME"})
	require.NoError(t, err)
	require.Len(t, own, 1)

	require.NoError(t, writer.Commit(ctx))

	got, err = reader.FindCompanies(ctx, store.RequisitesFilter{Name: "Acme"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
}

func TestSession_CloseDiscardsStagedWrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	sess, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.SaveDirectory(ctx, &domain.DirectoryRecord{Kind: domain.KindCity, Name: "Kazan"}))
	require.NoError(t, sess.Close(ctx))

	_, err = sess.ListDirectory(ctx, domain.KindCity)
	require.ErrorIs(t, err, store.ErrSessionClosed)

	next, err := s.Begin(ctx)
	require.NoError(t, err)
	defer next.Close(ctx)

	cities, err := next.ListDirectory(ctx, domain.KindCity)
	require.NoError(t, err)
	assert.Empty(t, cities)
	assert.Equal(t, 0, s.Commits())
}

func TestSession_UpdateKeepsSingleRecord(t *testing.T) {
	ctx := context.Background()
	s := New()

	sess, err := s.Begin(ctx)
	require.NoError(t, err)
	defer sess.Close(ctx)

	c := &domain.Company{Requisites: domain.Requisites{Name: "Acme", TIN: "7707083893"}}
	require.NoError(t, sess.SaveCompany(ctx, c))
	require.NoError(t, sess.Commit(ctx))

	c.Note = "updated"
	require.NoError(t, sess.SaveCompany(ctx, c))
	require.NoError(t, sess.Commit(ctx))

	all, err := sess.FindCompanies(ctx, store.RequisitesFilter{Name: "Acme"})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "updated", all[0].Note)
}

func TestSession_FindDocumentsByNumberAndDate(t *testing.T) {
	ctx := context.Background()
	s := New()

	sess, err := s.Begin(ctx)
	require.NoError(t, err)
	defer sess.Close(ctx)

	day := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []*domain.Document{
		{Type: domain.DocContract, RegistrationNumber: "1", RegistrationDate: day},
		{Type: domain.DocOutgoingLetter, RegistrationNumber: "1", RegistrationDate: day},
		{Type: domain.DocContract, RegistrationNumber: "1", RegistrationDate: day.AddDate(0, 0, 1)},
	} {
		require.NoError(t, sess.SaveDocument(ctx, d))
	}

	number := "1"
	all, err := sess.FindDocuments(ctx, store.DocumentFilter{RegistrationNumber: &number, RegistrationDate: &day})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	contracts, err := sess.FindDocuments(ctx, store.DocumentFilter{
		Types:              []domain.DocumentType{domain.DocContract},
		RegistrationNumber: &number,
		RegistrationDate:   &day,
	})
	require.NoError(t, err)
	assert.Len(t, contracts, 1)
}

func TestSession_SaveBodyVersions(t *testing.T) {
	ctx := context.Background()
	s := New()

	sess, err := s.Begin(ctx)
	require.NoError(t, err)
	defer sess.Close(ctx)

	doc := &domain.Document{Type: domain.DocOrder}
	require.NoError(t, sess.SaveDocument(ctx, doc))
	require.NoError(t, sess.SaveBody(ctx, &domain.Body{DocumentID: doc.ID, Extension: "txt", Content: []byte("a")}))
	require.NoError(t, sess.SaveBody(ctx, &domain.Body{DocumentID: doc.ID, Extension: "txt", Content: []byte("b")}))
	require.NoError(t, sess.Commit(ctx))

	bodies := s.Bodies(doc.ID)
	require.Len(t, bodies, 2)
	assert.Equal(t, 2, bodies[1].Version)
}

func TestSession_GetDocumentRegister(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddDocumentRegister(domain.DocumentRegister{ID: 7, Name: "Outgoing"})

	sess, err := s.Begin(ctx)
	require.NoError(t, err)
	defer sess.Close(ctx)

	reg, err := sess.GetDocumentRegister(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Outgoing", reg.Name)

	_, err = sess.GetDocumentRegister(ctx, 8)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
