package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/source"
	"github.com/theirongolddev/subcal/internal/store"
	"github.com/theirongolddev/subcal/internal/tui"
)

// subscriptionFlags are the field flags shared by add and edit.
type subscriptionFlags struct {
	name, price, currency, cycle, start, end, color, link string
}

func (f *subscriptionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Subscription name")
	cmd.Flags().StringVar(&f.price, "price", "", "Price per billing cycle")
	cmd.Flags().StringVar(&f.currency, "currency", "", "3-letter currency code")
	cmd.Flags().StringVar(&f.cycle, "cycle", "", "Billing cycle: weekly, monthly or yearly")
	cmd.Flags().StringVar(&f.start, "start", "", "First billing day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "Last day, YYYY-MM-DD (empty clears it on edit)")
	cmd.Flags().StringVar(&f.color, "color", "", "Bar color, #rrggbb")
	cmd.Flags().StringVar(&f.link, "link", "", "Management or billing URL")
}

// apply copies every flag the user set onto in and reports whether any was.
func (f *subscriptionFlags) apply(cmd *cobra.Command, in *source.Input) bool {
	fields := []struct {
		flag string
		src  string
		dst  *string
	}{
		{"name", f.name, &in.Name},
		{"price", f.price, &in.Price},
		{"currency", f.currency, &in.Currency},
		{"cycle", f.cycle, &in.Cycle},
		{"start", f.start, &in.StartDate},
		{"end", f.end, &in.EndDate},
		{"color", f.color, &in.Color},
		{"link", f.link, &in.Link},
	}
	changed := false
	for _, fl := range fields {
		if cmd.Flags().Changed(fl.flag) {
			*fl.dst = fl.src
			changed = true
		}
	}
	return changed
}

var (
	addFlags  subscriptionFlags
	editFlags subscriptionFlags
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscription (opens a form when no field flags are given)",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a subscription (opens a form when no field flags are given)",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>...",
	Aliases: []string{"rm"},
	Short:   "Remove subscriptions",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

func init() {
	addFlags.register(addCmd)
	editFlags.register(editCmd)
	rootCmd.AddCommand(addCmd, editCmd, removeCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	prefs, err := s.preferences(ctx)
	if err != nil {
		return err
	}

	in := source.Input{
		Currency:  prefs.Currency,
		Cycle:     string(model.CycleMonthly),
		StartDate: s.today().ISO(),
	}
	if !addFlags.apply(cmd, &in) {
		if err := runForm(&in, nil, s.inputOptions()); err != nil {
			return err
		}
	}

	sub, err := source.Normalize(in, nil, s.inputOptions())
	if err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("saving subscription: %w", err)
	}
	if err := s.store.SetCurrency(ctx, sub.Currency); err != nil {
		s.log.Warn("remembering currency failed", zap.Error(err))
	}

	fmt.Printf("  Added %s (%s, id %s)\n", sub.Name, formatPrice(sub), shortID(sub.ID))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	existing, err := resolveSubscription(ctx, s.store, args[0])
	if err != nil {
		return err
	}

	in := source.InputFrom(existing)
	if !editFlags.apply(cmd, &in) {
		if err := runForm(&in, &existing, s.inputOptions()); err != nil {
			return err
		}
	}

	sub, err := source.Normalize(in, &existing, s.inputOptions())
	if err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("saving subscription: %w", err)
	}
	fmt.Printf("  Updated %s (id %s)\n", sub.Name, shortID(sub.ID))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	for _, arg := range args {
		sub, err := resolveSubscription(ctx, s.store, arg)
		if err != nil {
			return err
		}
		if err := s.store.Delete(ctx, sub.ID); err != nil {
			return fmt.Errorf("removing %s: %w", sub.Name, err)
		}
		fmt.Printf("  Removed %s (id %s)\n", sub.Name, shortID(sub.ID))
	}
	return nil
}

func runForm(in *source.Input, existing *model.Subscription, opts source.Options) error {
	if err := tui.NewSubscriptionForm(in, existing, opts).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("canceled")
		}
		return fmt.Errorf("form: %w", err)
	}
	return nil
}

// resolveSubscription finds a subscription by full ID or by an unambiguous
// ID prefix.
func resolveSubscription(ctx context.Context, st *store.Store, id string) (model.Subscription, error) {
	id = strings.TrimSpace(id)
	sub, err := st.Get(ctx, id)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Subscription{}, err
	}

	subs, err := st.List(ctx)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("listing subscriptions: %w", err)
	}
	var matches []model.Subscription
	for _, s := range subs {
		if id != "" && strings.HasPrefix(s.ID, id) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return model.Subscription{}, fmt.Errorf("%s: %w", id, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Subscription{}, fmt.Errorf("id prefix %q matches %d subscriptions", id, len(matches))
	}
}
