package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
)

func TestWhere_NumbersPlaceholders(t *testing.T) {
	w := &where{}
	w.add("a = ?", 1)
	w.add("b = ? AND c = ?", 2, 3)

	assert.Equal(t, " WHERE (a = $1) OR (b = $2 AND c = $3)", w.sql("OR"))
	assert.Equal(t, []any{1, 2, 3}, w.args)
	assert.Equal(t, "", (&where{}).sql("AND"))
}

func TestUpsertSQL(t *testing.T) {
	got := upsertSQL("directories", []string{"id", "kind", "name"})
	assert.Equal(t,
		"INSERT INTO directories (id, kind, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET kind = EXCLUDED.kind, name = EXCLUDED.name",
		got)
}

func TestRequisitesWhere_EmptyMatchesNothing(t *testing.T) {
	assert.True(t, requisitesWhere(store.RequisitesFilter{TIN: "7707083893"}).empty(), "TIN alone is not a criterion")
	assert.False(t, requisitesWhere(store.RequisitesFilter{PSRN: "1027700132195"}).empty())
}

// openTestStore connects to TEST_DATABASE_URL and migrates it.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE document_bodies, documents, document_registers, employees,
		departments, business_units, persons, companies, directories CASCADE`)
	require.NoError(t, err)
	return New(pool)
}

func TestSession_CommitAndRollback(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s1, err := st.Begin(ctx)
	require.NoError(t, err)
	defer s1.Close(ctx)

	c := &domain.Company{Requisites: domain.Requisites{Name: "ООО  Ромашка", TIN: "7707083893", TRRC: "773601001"}}
	require.NoError(t, s1.SaveCompany(ctx, c))
	require.NotEqual(t, uuid.Nil, c.ID)

	s2, err := st.Begin(ctx)
	require.NoError(t, err)
	found, err := s2.FindCompanies(ctx, store.RequisitesFilter{Name: "ооо ромашка"})
	require.NoError(t, err)
	assert.Empty(t, found, "uncommitted writes are not visible to other sessions")
	require.NoError(t, s2.Close(ctx))

	require.NoError(t, s1.Commit(ctx))

	s3, err := st.Begin(ctx)
	require.NoError(t, err)
	defer s3.Close(ctx)
	found, err = s3.FindCompanies(ctx, store.RequisitesFilter{TIN: "7707083893", TRRC: "773601001"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ООО  Ромашка", found[0].Name)

	p := &domain.Person{LastName: "Иванов", FirstName: "Иван"}
	require.NoError(t, s3.SavePerson(ctx, p))
	require.NoError(t, s3.Close(ctx))

	s4, err := st.Begin(ctx)
	require.NoError(t, err)
	defer s4.Close(ctx)
	persons, err := s4.FindPersons(ctx, store.PersonFilter{Name: "Иванов Иван"})
	require.NoError(t, err)
	assert.Empty(t, persons, "closing without commit discards writes")
}

func TestSession_FailedWriteKeepsTransaction(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s, err := st.Begin(ctx)
	require.NoError(t, err)
	defer s.Close(ctx)

	missing := uuid.New()
	bad := &domain.Department{Name: "Отдел", BusinessUnitID: &missing}
	err = s.SaveDepartment(ctx, bad)
	require.Error(t, err)

	ok := &domain.Department{Name: "Бухгалтерия"}
	require.NoError(t, s.SaveDepartment(ctx, ok))
	require.NoError(t, s.Commit(ctx))

	got, err := s.GetDepartment(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, "Бухгалтерия", got.Name)
}

func TestSession_DocumentsAndBodies(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.Pool().Exec(ctx, "INSERT INTO document_registers (id, name, register_index) VALUES (7, 'Договоры', 'Д')")
	require.NoError(t, err)

	s, err := st.Begin(ctx)
	require.NoError(t, err)
	defer s.Close(ctx)

	date := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)
	doc := &domain.Document{Type: domain.DocContract, RegistrationNumber: "15", RegistrationDate: date}
	require.NoError(t, s.SaveDocument(ctx, doc))
	assert.Equal(t, domain.NotRegistered, doc.RegistrationState)

	number := "15"
	found, err := s.FindDocuments(ctx, store.DocumentFilter{RegistrationNumber: &number, RegistrationDate: &date})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, doc.ID, found[0].ID)

	b1 := &domain.Body{DocumentID: doc.ID, Extension: "pdf", Content: []byte("%PDF-1.4")}
	b2 := &domain.Body{DocumentID: doc.ID, Extension: "pdf", Content: []byte("%PDF-1.5")}
	require.NoError(t, s.SaveBody(ctx, b1))
	require.NoError(t, s.SaveBody(ctx, b2))
	assert.Equal(t, 1, b1.Version)
	assert.Equal(t, 2, b2.Version)

	err = s.SaveBody(ctx, &domain.Body{DocumentID: uuid.New(), Content: []byte("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)

	reg, err := s.GetDocumentRegister(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Д", reg.Index)

	_, err = s.GetDocumentRegister(ctx, 8)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
