package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"familybudget/internal/core"
	"familybudget/internal/gateway"
)

// SeedFile is the file NewFromDir looks for.
const SeedFile = "seed.json"

// Seed is the on-disk shape of seed.json.
type Seed struct {
	Expenses []core.Expense    `json:"expenses"`
	Incomes  []core.Income     `json:"incomes"`
	Goals    []core.BudgetGoal `json:"goals"`
}

// Store is a mutex-guarded in-memory ledger.
type Store struct {
	mu       sync.Mutex
	expenses []core.Expense
	incomes  []core.Income
	goals    []core.BudgetGoal
}

var _ gateway.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewFromDir seeds the store from <dir>/seed.json. A missing file yields an
// empty store; a malformed one is an error.
func NewFromDir(dir string) (*Store, error) {
	s := New()
	if dir == "" {
		return s, nil
	}
	b, err := os.ReadFile(filepath.Join(dir, SeedFile))
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := s.Load(context.Background(), seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Load validates and inserts every seed record.
func (s *Store) Load(ctx context.Context, seed Seed) error {
	for i, e := range seed.Expenses {
		if _, err := s.CreateExpense(ctx, e); err != nil {
			return fmt.Errorf("seed expense %d: %w", i, err)
		}
	}
	for i, in := range seed.Incomes {
		if _, err := s.CreateIncome(ctx, in); err != nil {
			return fmt.Errorf("seed income %d: %w", i, err)
		}
	}
	for i, g := range seed.Goals {
		if err := s.seedGoal(ctx, g); err != nil {
			return fmt.Errorf("seed goal %d: %w", i, err)
		}
	}
	return nil
}

// seedGoal keeps a seed goal's own id when no goal with that id exists yet.
func (s *Store) seedGoal(ctx context.Context, g core.BudgetGoal) error {
	if g.ID != "" {
		if err := g.Validate(); err != nil {
			return err
		}
		s.mu.Lock()
		known := false
		for _, existing := range s.goals {
			if existing.ID == g.ID {
				known = true
			}
			if existing.CreatedBy == g.CreatedBy && existing.Category == g.Category && existing.Month == g.Month {
				s.mu.Unlock()
				return gateway.ErrDuplicateGoal
			}
		}
		if !known {
			s.goals = append(s.goals, g)
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
	}
	_, err := s.UpsertGoal(ctx, g)
	return err
}

func (s *Store) ListExpenses(_ context.Context, owner string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if e.CreatedBy == owner {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ListIncomes(_ context.Context, owner string) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Income, 0)
	for _, in := range s.incomes {
		if in.CreatedBy == owner {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *Store) ListGoals(_ context.Context, owner string) ([]core.BudgetGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.BudgetGoal, 0)
	for _, g := range s.goals {
		if g.CreatedBy == owner {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) CreateIncome(_ context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes = append(s.incomes, in)
	return in, nil
}

// UpsertGoal updates the goal sharing g's (category, month, owner) when g has
// no id, or the goal with g's id otherwise.
func (s *Store) UpsertGoal(_ context.Context, g core.BudgetGoal) (core.BudgetGoal, error) {
	if err := g.Validate(); err != nil {
		return core.BudgetGoal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, byID := -1, -1
	for i, existing := range s.goals {
		if existing.CreatedBy != g.CreatedBy {
			continue
		}
		if existing.Category == g.Category && existing.Month == g.Month {
			byKey = i
		}
		if g.ID != "" && existing.ID == g.ID {
			byID = i
		}
	}

	switch {
	case g.ID == "" && byKey >= 0:
		g.ID = s.goals[byKey].ID
		s.goals[byKey] = g
	case g.ID == "":
		g.ID = uuid.NewString()
		s.goals = append(s.goals, g)
	case byID < 0:
		return core.BudgetGoal{}, gateway.ErrNotFound
	case byKey >= 0 && byKey != byID:
		return core.BudgetGoal{}, gateway.ErrDuplicateGoal
	default:
		s.goals[byID] = g
	}
	return g, nil
}

func (s *Store) DeleteExpense(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id && e.CreatedBy == owner {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (s *Store) DeleteIncome(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, in := range s.incomes {
		if in.ID == id && in.CreatedBy == owner {
			s.incomes = append(s.incomes[:i], s.incomes[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (s *Store) DeleteGoal(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.ID == id && g.CreatedBy == owner {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}
