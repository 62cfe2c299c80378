package subscription

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan describes a subscription plan a merchant can sign up for.
type Plan struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Public      bool            `yaml:"public"` // available for self-service signup
	TrialDays   int             `yaml:"trial_days"`
	Price       Money           `yaml:"price"`
	Interval    BillingInterval `yaml:"interval"`
}

// TrialEndsAt calculates when the trial period ends. Returns startedAt
// unchanged when the plan has no trial.
func (p Plan) TrialEndsAt(startedAt time.Time) time.Time {
	if p.TrialDays <= 0 {
		return startedAt
	}
	return startedAt.AddDate(0, 0, p.TrialDays).UTC()
}

// InitialStatus is the subscription state a fresh signup starts in.
func (p Plan) InitialStatus() Status {
	if p.TrialDays > 0 {
		return StatusTrialing
	}
	return StatusActive
}

// Catalog holds the plans offered by the platform, keyed by plan ID.
// Plan definitions ship with the deployment as a YAML file rather than
// living in the database so a plan change is a reviewed code change.
type Catalog struct {
	plans map[string]Plan
	order []string
}

// LoadCatalog reads a plan catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// ParseCatalog reads a plan catalog from YAML.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if len(doc.Plans) == 0 {
		return nil, errors.Join(ErrFailedToLoadPlans, errors.New("catalog defines no plans"))
	}

	c := &Catalog{plans: make(map[string]Plan, len(doc.Plans))}
	for _, p := range doc.Plans {
		if p.ID == "" {
			return nil, errors.Join(ErrInvalidPlan, errors.New("plan without id"))
		}
		if _, dup := c.plans[p.ID]; dup {
			return nil, errors.Join(ErrInvalidPlan, fmt.Errorf("duplicate plan id %q", p.ID))
		}
		if p.Interval == "" {
			p.Interval = BillingIntervalNone
		}
		c.plans[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Plan returns the plan with the given ID.
func (c *Catalog) Plan(id string) (Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, id)
	}
	return p, nil
}

// Public returns the plans available for self-service signup, in
// catalog order.
func (c *Catalog) Public() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		if p := c.plans[id]; p.Public {
			out = append(out, p)
		}
	}
	return out
}
