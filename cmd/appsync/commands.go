package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexjbarnes/appsync/appsync"
	"github.com/alexjbarnes/appsync/netstate"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("appsync "+name, pflag.ContinueOnError)
	fs.SortFlags = false

	return fs
}

type loginFlags struct {
	email     string
	password  string
	apiKey    string
	jwt       string
	function  string
	anonymous bool
	reuse     bool
}

// credentials picks the login method from the flags. Explicit flags win
// over the APP_EMAIL/APP_PASSWORD/APP_API_KEY defaults.
func (f loginFlags) credentials() (appsync.Credentials, error) {
	switch {
	case f.anonymous:
		return appsync.Anonymous(f.reuse), nil
	case f.function != "":
		return appsync.CustomFunction(json.RawMessage(f.function))
	case f.jwt != "":
		return appsync.JWT(f.jwt), nil
	case f.email != "":
		if f.password == "" {
			return nil, fmt.Errorf("--password is required with --email")
		}

		return appsync.EmailPassword(f.email, f.password), nil
	case f.apiKey != "":
		return appsync.APIKey(f.apiKey), nil
	default:
		return nil, fmt.Errorf("no credentials: pass --email, --api-key, --jwt, --function or --anonymous")
	}
}

func runLogin(ctx context.Context, e *env, args []string) error {
	f := loginFlags{email: e.cfg.Email, password: e.cfg.Password, apiKey: e.cfg.APIKey}

	fs := newFlagSet("login")
	fs.StringVar(&f.email, "email", f.email, "email/password login")
	fs.StringVar(&f.password, "password", f.password, "password for --email")
	fs.StringVar(&f.apiKey, "api-key", f.apiKey, "API key login")
	fs.StringVar(&f.jwt, "jwt", "", "custom JWT login")
	fs.StringVar(&f.function, "function", "", "custom function login with a JSON object payload")
	fs.BoolVar(&f.anonymous, "anonymous", false, "anonymous login")
	fs.BoolVar(&f.reuse, "reuse", true, "reuse a logged in anonymous user")

	if err := fs.Parse(args); err != nil {
		return err
	}

	creds, err := f.credentials()
	if err != nil {
		return err
	}

	u, err := e.app.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	return printYAML(e.out, userView(u, true))
}

func runLogout(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("logout")
	all := fs.Bool("all", false, "log out every user")
	remove := fs.Bool("remove", false, "also delete local data of the user")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var users []*appsync.User

	if *all {
		users = e.app.AllUsers()
	} else {
		u, err := e.currentUser()
		if err != nil {
			return err
		}

		users = []*appsync.User{u}
	}

	for _, u := range users {
		var err error
		if *remove {
			err = u.Remove(ctx)
		} else {
			err = u.LogOut(ctx)
		}

		if err != nil {
			return fmt.Errorf("logging out %s: %w", u.ID(), err)
		}

		e.logger.Info("logged out", slog.String("user_id", u.ID()), slog.String("state", u.State().String()))
	}

	return nil
}

type userOutput struct {
	ID         string   `yaml:"id"`
	State      string   `yaml:"state"`
	Provider   string   `yaml:"provider"`
	Current    bool     `yaml:"current,omitempty"`
	Name       string   `yaml:"name,omitempty"`
	Email      string   `yaml:"email,omitempty"`
	Identities []string `yaml:"identities,omitempty"`
}

func userView(u *appsync.User, current bool) userOutput {
	p := u.Profile()

	out := userOutput{
		ID:       u.ID(),
		State:    u.State().String(),
		Provider: string(u.Provider()),
		Current:  current,
		Name:     p.Name,
		Email:    p.Email,
	}

	for _, id := range u.Identities() {
		out.Identities = append(out.Identities, string(id.Provider)+":"+id.ID)
	}

	return out
}

func runUsers(_ context.Context, e *env, args []string) error {
	if err := newFlagSet("users").Parse(args); err != nil {
		return err
	}

	current := e.app.CurrentUser()

	views := []userOutput{}
	for _, u := range e.app.AllUsers() {
		views = append(views, userView(u, u.Equal(current)))
	}

	return printYAML(e.out, views)
}

func runAPIKey(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	u, err := e.currentUser()
	if err != nil {
		return err
	}

	keys := u.APIKeys()
	action, rest := args[0], args[1:]

	need := func(n int) error {
		if len(rest) != n {
			return fmt.Errorf("apikey %s takes %d argument(s)", action, n)
		}

		return nil
	}

	switch action {
	case "create":
		if err := need(1); err != nil {
			return err
		}

		key, err := keys.Create(ctx, rest[0])
		if err != nil {
			return err
		}

		return printYAML(e.out, key)
	case "list":
		all, err := keys.FetchAll(ctx)
		if err != nil {
			return err
		}

		return printYAML(e.out, all)
	case "get":
		if err := need(1); err != nil {
			return err
		}

		key, err := keys.Fetch(ctx, rest[0])
		if err != nil {
			return err
		}

		if key == nil {
			return fmt.Errorf("API key %s not found", rest[0])
		}

		return printYAML(e.out, key)
	case "delete":
		if err := need(1); err != nil {
			return err
		}

		return keys.Delete(ctx, rest[0])
	case "enable":
		if err := need(1); err != nil {
			return err
		}

		return keys.Enable(ctx, rest[0])
	case "disable":
		if err := need(1); err != nil {
			return err
		}

		return keys.Disable(ctx, rest[0])
	default:
		return errUsage
	}
}

func runRefreshData(ctx context.Context, e *env, args []string) error {
	if err := newFlagSet("refresh-data").Parse(args); err != nil {
		return err
	}

	u, err := e.currentUser()
	if err != nil {
		return err
	}

	raw, err := u.RefreshCustomData(ctx)
	if err != nil {
		return fmt.Errorf("refreshing custom data: %w", err)
	}

	var data any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("decoding custom data: %w", err)
		}
	}

	return printYAML(e.out, data)
}

// parseCallArgs decodes each argument as JSON.
func parseCallArgs(raw []string) ([]any, error) {
	args := make([]any, len(raw))

	for i, r := range raw {
		if !json.Valid([]byte(r)) {
			return nil, fmt.Errorf("argument %d is not valid JSON: %s", i+1, r)
		}

		args[i] = json.RawMessage(r)
	}

	return args, nil
}

func runCall(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("call")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	callArgs, err := parseCallArgs(rest[1:])
	if err != nil {
		return err
	}

	u, err := e.currentUser()
	if err != nil {
		return err
	}

	raw, err := u.Functions().Call(ctx, rest[0], callArgs...)
	if err != nil {
		return fmt.Errorf("calling %s: %w", rest[0], err)
	}

	var result any
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("decoding result of %s: %w", rest[0], err)
	}

	return printYAML(e.out, result)
}

type subscriptionOutput struct {
	Name       string    `yaml:"name,omitempty"`
	ObjectType string    `yaml:"object_type"`
	Query      string    `yaml:"query"`
	UpdatedAt  time.Time `yaml:"updated_at"`
}

func runSubs(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("subs")
	realm := fs.String("realm", "", "realm name (default realm when empty)")
	update := fs.Bool("update", true, "replace an existing subscription with the same name")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	u, err := e.currentUser()
	if err != nil {
		return err
	}

	store, err := e.app.SubscriptionStore(u, *realm)
	if err != nil {
		return err
	}

	set, err := store.Set()
	if err != nil {
		return err
	}

	switch rest[0] {
	case "list":
		subs := []subscriptionOutput{}
		for _, s := range set.Subscriptions() {
			subs = append(subs, subscriptionOutput{Name: s.Name, ObjectType: s.ObjectType, Query: s.Query, UpdatedAt: s.UpdatedAt})
		}

		return printYAML(e.out, map[string]any{
			"realm":         store.RealmPath(),
			"version":       set.Version(),
			"state":         set.State().String(),
			"subscriptions": subs,
		})
	case "add":
		if len(rest) != 4 {
			return fmt.Errorf("subs add takes NAME TYPE QUERY")
		}

		return set.Update(func(m *appsync.MutableSubscriptionSet) error {
			return m.Add(rest[1], rest[2], rest[3], *update)
		})
	case "remove":
		if len(rest) != 2 {
			return fmt.Errorf("subs remove takes NAME")
		}

		return set.Update(func(m *appsync.MutableSubscriptionSet) error {
			if !m.Remove(rest[1]) {
				return fmt.Errorf("no subscription named %q", rest[1])
			}

			return nil
		})
	default:
		return errUsage
	}
}

func runProbe(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("probe")
	addr := fs.String("addr", e.cfg.ProbeAddr, "host:port to dial")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *addr == "" {
		return fmt.Errorf("no probe address: pass --addr or set CONNECTIVITY_PROBE_ADDR")
	}

	p := netstate.NewPoller(e.obs, *addr, e.logger)
	online := p.Probe(ctx)

	return printYAML(e.out, map[string]any{"addr": *addr, "online": online})
}

type event struct {
	Time   time.Time `yaml:"time"`
	Kind   string    `yaml:"kind"`
	UserID string    `yaml:"user_id,omitempty"`
	Online *bool     `yaml:"online,omitempty"`
}

func runWatch(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("watch")
	addr := fs.String("addr", e.cfg.ProbeAddr, "host:port to probe for connectivity")
	interval := fs.Duration("interval", e.cfg.ProbeInterval, "probe interval")

	if err := fs.Parse(args); err != nil {
		return err
	}

	events := make(chan event, 16)

	id := e.obs.AddListener(netstate.ListenerFunc(func(online bool) {
		select {
		case events <- event{Time: time.Now().UTC(), Kind: "network", Online: &online}:
		default:
			e.logger.Warn("dropping network event, output is too slow")
		}
	}))
	defer e.obs.RemoveListener(id)

	g, gctx := errgroup.WithContext(ctx)

	if *addr != "" {
		p := netstate.NewPoller(e.obs, *addr, e.logger, netstate.WithInterval(*interval))
		g.Go(func() error {
			return p.Run(gctx)
		})
	}

	auth := e.app.AuthChanges(gctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-auth:
				if !ok {
					return nil
				}

				if err := printYAML(e.out, []event{{Time: time.Now().UTC(), Kind: ev.Type.String(), UserID: ev.User.ID()}}); err != nil {
					return err
				}
			case ev := <-events:
				if err := printYAML(e.out, []event{ev}); err != nil {
					return err
				}
			}
		}
	})

	e.logger.Info("watching", slog.String("probe_addr", *addr))

	return g.Wait()
}
