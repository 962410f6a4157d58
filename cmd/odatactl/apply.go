/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"

	"github.com/voedger/odata/pkg/client"
	"github.com/voedger/odata/pkg/descriptors"
	"github.com/voedger/odata/pkg/istorage"
)

var (
	serviceRoot string
	headers     []string

	singleChangeset bool
	independent     bool
	continueOnError bool
	replaceOnUpdate bool
	postOnlySet     bool
	noETags         bool
	prefer          string
)

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <script.yaml>",
		Short: "Submits changes listed in the script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := readScript(args[0])
			if err != nil {
				return err
			}
			c, err := newContext(script.Service)
			if err != nil {
				return err
			}
			return applyScript(cmd.Context(), cmd.OutOrStdout(), c, script, filepath.Dir(args[0]), saveOptions())
		},
	}
	cmd.Flags().BoolVar(&singleChangeset, "batch", false, "submit all changes in one atomic changeset")
	cmd.Flags().BoolVar(&independent, "independent", false, "submit changes in one batch, a changeset per change")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "do not stop on the first failed change")
	cmd.Flags().BoolVar(&replaceOnUpdate, "replace", false, "replace entities instead of merging")
	cmd.Flags().BoolVar(&postOnlySet, "post-only-set", false, "insert only the properties listed by the script")
	cmd.Flags().BoolVar(&noETags, "no-etags", false, "do not send cached concurrency tokens")
	cmd.Flags().StringVar(&prefer, "prefer", "", "preferred response to inserts and updates: "+preferRepresentation+" or "+preferMinimal)
	return cmd
}

func saveOptions() client.SaveChangesOptions {
	opts := client.None
	if singleChangeset {
		opts |= client.BatchWithSingleChangeset
	}
	if independent {
		opts |= client.BatchWithIndependentOperations
	}
	if continueOnError {
		opts |= client.ContinueOnError
	}
	if replaceOnUpdate {
		opts |= client.ReplaceOnUpdate
	}
	if postOnlySet {
		opts |= client.PostOnlySetProperties
	}
	return opts
}

func responsePreference() (client.ResponsePreference, error) {
	switch prefer {
	case "":
		return client.PreferenceDefault, nil
	case preferRepresentation:
		return client.PreferenceIncludeContent, nil
	case preferMinimal:
		return client.PreferenceNoContent, nil
	}
	return client.PreferenceDefault, fmt.Errorf("%w: %q", ErrUnknownPreference, prefer)
}

func readScript(path string) (*changeScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	script := &changeScript{}
	if err := yaml.Unmarshal(data, script); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return script, nil
}

// newContext creates the client for the --service flag or the given root
func newContext(scriptService string) (*client.Context, error) {
	root := serviceRoot
	if len(root) == 0 {
		root = scriptService
	}
	if len(root) == 0 {
		return nil, ErrNoServiceRoot
	}
	preference, err := responsePreference()
	if err != nil {
		return nil, err
	}
	opts := []client.Option{client.WithUseETags(!noETags), client.WithResponsePreference(preference)}
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMalformedHeader, h)
		}
		opts = append(opts, client.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
	}
	return client.New(root, opts...), nil
}

func applyScript(ctx context.Context, out io.Writer, c *client.Context, script *changeScript, baseDir string, opts client.SaveChangesOptions) error {
	a := &applier{ctx: c, objects: map[string]*entity{}, baseDir: baseDir}
	for i, ch := range script.Changes {
		if err := a.track(ch); err != nil {
			return fmt.Errorf("change %d (%s): %w", i+1, ch.Op, err)
		}
	}
	logger.Verbose(fmt.Sprintf("%d changes tracked", len(script.Changes)))

	responses, err := c.SaveChanges(ctx, opts)
	for _, r := range responses {
		printResponse(out, r)
	}
	var saveErr *client.SaveChangesError
	if errors.As(err, &saveErr) {
		fmt.Fprintln(out, yellow(fmt.Sprintf("%d of %d changes failed", len(saveErr.Failed()), len(responses))))
	}
	return err
}

func printResponse(out io.Writer, r *client.ChangeOperationResponse) {
	d := r.Descriptor()
	if r.Error() != nil {
		fmt.Fprintf(out, "%s %s: %s\n", red("FAIL"), d, r.Error())
		return
	}
	status := fmt.Sprintf("%d", r.StatusCode())
	if len(http.StatusText(r.StatusCode())) > 0 {
		status += " " + http.StatusText(r.StatusCode())
	}
	fmt.Fprintf(out, "%s %s %s\n", green("OK"), d, status)
}

func (a *applier) track(ch change) error {
	switch ch.Op {
	case opAdd:
		obj := a.newEntity(ch)
		if err := a.ctx.AddObject(ch.Set, obj); err != nil {
			return err
		}
		if err := a.ctx.MarkPropertiesSet(obj, maps.Keys(ch.Properties)...); err != nil {
			return err
		}
		return a.remember(ch.Ref, obj)
	case opAddRelated:
		source, err := a.resolve(ch.Source, "")
		if err != nil {
			return err
		}
		obj := a.newEntity(ch)
		set := ch.Set
		if len(set) == 0 {
			set = ch.Nav
		}
		if err := a.ctx.AddRelatedObject(source, ch.Nav, set, obj); err != nil {
			return err
		}
		if err := a.ctx.MarkPropertiesSet(obj, maps.Keys(ch.Properties)...); err != nil {
			return err
		}
		return a.remember(ch.Ref, obj)
	case opUpdate:
		obj, err := a.resolve(ch.Target, ch.ETag)
		if err != nil {
			return err
		}
		maps.Copy(*obj, ch.Properties)
		return a.ctx.UpdateObject(obj, maps.Keys(ch.Properties)...)
	case opDelete:
		obj, err := a.resolve(ch.Target, ch.ETag)
		if err != nil {
			return err
		}
		return a.ctx.DeleteObject(obj)
	case opLink, opUnlink, opSetLink:
		return a.trackLink(ch)
	case opStream:
		obj, err := a.resolve(ch.Target, "")
		if err != nil {
			return err
		}
		content := []byte(ch.Content)
		if len(ch.File) > 0 {
			path := ch.File
			if !filepath.IsAbs(path) {
				path = filepath.Join(a.baseDir, path)
			}
			if content, err = os.ReadFile(path); err != nil {
				return err
			}
		}
		return a.ctx.SetSaveStream(obj, ch.Name, ch.ContentType, content)
	}
	return fmt.Errorf("%w: %q", ErrUnknownOperation, ch.Op)
}

func (a *applier) trackLink(ch change) error {
	source, err := a.resolve(ch.Source, "")
	if err != nil {
		return err
	}
	if ch.Op == opSetLink && len(ch.Target) == 0 {
		return a.ctx.SetLink(source, ch.Nav, nil)
	}
	target, err := a.resolve(ch.Target, "")
	if err != nil {
		return err
	}
	switch ch.Op {
	case opLink:
		return a.ctx.AddLink(source, ch.Nav, target)
	case opUnlink:
		return a.ctx.DeleteLink(source, ch.Nav, target)
	}
	return a.ctx.SetLink(source, ch.Nav, target)
}

func (a *applier) newEntity(ch change) *entity {
	obj := entity{}
	maps.Copy(obj, ch.Properties)
	return &obj
}

func (a *applier) remember(ref string, obj *entity) error {
	if len(ref) == 0 {
		return nil
	}
	if _, ok := a.objects[ref]; ok {
		return fmt.Errorf("ref %q is used twice", ref)
	}
	a.objects[ref] = obj
	return nil
}

// resolve returns the object named by ref or attaches the entity with the given identity
// etag of an already tracked entity becomes the If-Match condition
func (a *applier) resolve(name string, etag string) (*entity, error) {
	if obj, ok := a.objects[name]; ok {
		if len(etag) > 0 {
			if err := a.ctx.SetIntent(obj, descriptors.IfMatch(etag)); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}
	set, _, err := istorage.ParseIdentity(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReference, name)
	}
	obj := &entity{}
	if err := a.ctx.AttachTo(set, name, etag, obj); err != nil {
		return nil, err
	}
	a.objects[name] = obj
	return obj, nil
}
