// pkg/reconcile/reconcile_test.go
// TEST TYPE: BDD Integration Tests
// DEPENDENCIES: MemoryFS, links backend, fake installers and preference store
// PURPOSE: Verify the reconciliation properties across full runs

package reconcile_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arthur-debert/omiros/pkg/backends/links"
	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/reconcile"
	"github.com/arthur-debert/omiros/pkg/testutil"
	"github.com/arthur-debert/omiros/pkg/types"
)

type recorder struct {
	started  []types.Domain
	applied  int
	finished []types.DomainReport
}

func (r *recorder) DomainStarted(d types.Domain) { r.started = append(r.started, d) }
func (r *recorder) ActionApplied(types.RunOutcome) { r.applied++ }
func (r *recorder) DomainFinished(dr types.DomainReport) { r.finished = append(r.finished, dr) }

func dotfile(name, link string) types.DotfileEntry {
	return types.DotfileEntry{Original: name, Source: "/home/u/dotfiles/" + name, Link: link}
}

func reportFor(report types.RunReport, d types.Domain) types.DomainReport {
	for _, dr := range report.Domains {
		if dr.Domain == d {
			return dr
		}
	}
	Fail("no report for domain " + string(d))
	return types.DomainReport{}
}

func kinds(dr types.DomainReport) []types.ActionKind {
	var out []types.ActionKind
	for _, o := range dr.Outcomes {
		out = append(out, o.Action.Kind)
	}
	return out
}

var _ = Describe("Reconciler", func() {
	var (
		ctx        context.Context
		fsys       *testutil.MemoryFS
		packages   *testutil.FakeInstaller
		storeApps  *testutil.FakeInstaller
		extensions *testutil.FakeInstaller
		prefs      *testutil.FakePreferenceStore
		observer   *recorder
		input      types.DesiredInput
		dryRun     bool
		order      []types.Domain
	)

	autohide := types.Preference{
		Key:     types.PreferenceKey{Domain: "com.apple.dock", Key: "autohide"},
		Type:    types.TypeBool,
		Value:   types.BoolValue(true),
		Restart: "Dock",
		Label:   "dock.autohide",
	}
	tilesize := types.Preference{
		Key:     types.PreferenceKey{Domain: "com.apple.dock", Key: "tilesize"},
		Type:    types.TypeInt,
		Value:   types.IntValue(48),
		Restart: "Dock",
		Label:   "dock.icon-size",
	}

	BeforeEach(func() {
		ctx = context.Background()
		fsys = testutil.NewMemoryFS()
		Expect(fsys.WriteFile("/home/u/dotfiles/.zshrc", []byte("# zsh"), 0644)).To(Succeed())
		Expect(fsys.WriteFile("/home/u/dotfiles/.gitconfig", []byte("[user]"), 0644)).To(Succeed())
		Expect(fsys.MkdirAll("/home/u/dotfiles/nvim", 0755)).To(Succeed())

		packages = testutil.NewFakeInstaller(types.KindFormula, "git")
		storeApps = testutil.NewFakeInstaller(types.KindStoreApp)
		extensions = testutil.NewFakeInstaller(types.KindExtension, "golang.go")
		prefs = testutil.NewFakePreferenceStore()
		observer = &recorder{}
		dryRun = false
		order = nil

		input = types.DesiredInput{
			Formulae:   []string{"fish", "git"},
			StoreApps:  []types.AppRef{{Name: "Amphetamine", StoreID: "937984704"}},
			Extensions: []string{"golang.go"},
			Dotfiles: []types.DotfileEntry{
				dotfile(".zshrc", "/home/u/.zshrc"),
				dotfile("nvim", "/home/u/.config/nvim"),
			},
			Preferences: []types.Preference{autohide, tilesize},
		}
	})

	run := func() types.RunReport {
		desired, err := types.NewDesiredState(input)
		Expect(err).NotTo(HaveOccurred())

		r := reconcile.New(reconcile.Options{
			Capabilities: types.Capabilities{
				Packages:    packages,
				StoreApps:   storeApps,
				Extensions:  extensions,
				Links:       links.New(fsys),
				Preferences: prefs,
			},
			Order:    order,
			DryRun:   dryRun,
			Settler:  prefs,
			Observer: observer,
		})
		return r.Run(ctx, desired)
	}

	Describe("a first run", func() {
		It("visits every domain once in the default order", func() {
			report := run()

			Expect(observer.started).To(Equal(types.DefaultOrder()))
			Expect(report.Domains).To(HaveLen(5))
			Expect(report.Failed()).To(BeFalse())
		})

		It("installs only what is missing, in identifier order", func() {
			report := run()

			pkgs := reportFor(report, types.DomainPackages)
			Expect(pkgs.Outcomes).To(HaveLen(1))
			Expect(pkgs.Outcomes[0].Action.Target.ID).To(Equal("fish"))
			Expect(packages.Installs).To(Equal([]types.InstallTarget{{Kind: types.KindFormula, ID: "fish"}}))

			Expect(reportFor(report, types.DomainStoreApps).Outcomes).To(HaveLen(1))
			Expect(reportFor(report, types.DomainExtensions).Outcomes).To(BeEmpty())
		})

		It("creates links and their parent directories", func() {
			report := run()

			Expect(kinds(reportFor(report, types.DomainDotfiles))).To(Equal([]types.ActionKind{
				types.ActionCreateSymlink, types.ActionCreateSymlink,
			}))

			state, err := links.New(fsys).Probe("/home/u/.config/nvim")
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Kind).To(Equal(types.LinkSymlink))
			Expect(state.Target).To(Equal("/home/u/dotfiles/nvim"))
		})

		It("writes preferences and restarts their apps once", func() {
			prefs.Current[autohide.Key] = types.BoolValue(true)

			report := run()

			Expect(reportFor(report, types.DomainPreferences).Outcomes).To(HaveLen(1))
			Expect(prefs.Writes).To(Equal([]types.PreferenceKey{tilesize.Key}))
			Expect(prefs.Settled).To(HaveLen(1))
			Expect(prefs.Settled[0]).To(ConsistOf(tilesize))
		})

		It("keeps written preferences successful when restarting apps fails", func() {
			prefs.SettleErr = errors.New(errors.ErrPreferenceWrite, "killall failed")

			report := run()

			out := reportFor(report, types.DomainPreferences).Outcomes
			Expect(out).To(HaveLen(2))
			for _, o := range out {
				Expect(o.Result).To(Equal(types.ResultSuccess))
			}
			Expect(prefs.Settled).To(HaveLen(1))
			Expect(report.Failed()).To(BeFalse())
		})
	})

	Describe("idempotence", func() {
		It("produces no actions on a second run", func() {
			Expect(run().Failed()).To(BeFalse())

			second := run()
			Expect(second.Actions()).To(Equal(0))
			Expect(second.Failed()).To(BeFalse())
			Expect(prefs.Settled).To(HaveLen(1))
		})
	})

	Describe("no removal", func() {
		It("never acts on installed items that are not desired", func() {
			packages = testutil.NewFakeInstaller(types.KindFormula, "fish", "git", "wget", "jq")
			extensions = testutil.NewFakeInstaller(types.KindExtension, "golang.go", "ms-python.python")

			report := run()
			Expect(reportFor(report, types.DomainPackages).Outcomes).To(BeEmpty())
			Expect(reportFor(report, types.DomainExtensions).Outcomes).To(BeEmpty())
		})
	})

	Describe("dotfile links", func() {
		It("skips a link path holding user data and leaves it untouched", func() {
			Expect(fsys.WriteFile("/home/u/.zshrc", []byte("precious"), 0644)).To(Succeed())

			report := run()

			dots := reportFor(report, types.DomainDotfiles)
			Expect(dots.Outcomes[0].Action.Kind).To(Equal(types.ActionSkipConflict))
			Expect(dots.Outcomes[0].Result).To(Equal(types.ResultSkipped))
			Expect(dots.Outcomes[0].ErrorKind).To(Equal(errors.ErrFilesystemConflict))
			Expect(report.Failed()).To(BeFalse())

			data, err := fsys.ReadFile("/home/u/.zshrc")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("precious"))
		})

		It("does nothing for a link that is already correct", func() {
			Expect(fsys.Symlink("/home/u/dotfiles/.zshrc", "/home/u/.zshrc")).To(Succeed())

			dots := reportFor(run(), types.DomainDotfiles)
			Expect(kinds(dots)).To(Equal([]types.ActionKind{types.ActionCreateSymlink}))
			Expect(dots.Outcomes[0].Action.Dotfile.Link).To(Equal("/home/u/.config/nvim"))
		})

		It("replaces a stale link exactly once", func() {
			Expect(fsys.Symlink("/old/dotfiles/.zshrc", "/home/u/.zshrc")).To(Succeed())

			dots := reportFor(run(), types.DomainDotfiles)
			Expect(dots.Outcomes[0].Action.Kind).To(Equal(types.ActionReplaceSymlink))
			Expect(dots.Outcomes[0].Action.PreviousTarget).To(Equal("/old/dotfiles/.zshrc"))
			Expect(dots.Outcomes[0].Result).To(Equal(types.ResultSuccess))

			target, err := fsys.Readlink("/home/u/.zshrc")
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal("/home/u/dotfiles/.zshrc"))
		})
	})

	Describe("failures", func() {
		It("keeps installing after one install fails", func() {
			packages = testutil.NewFakeInstaller(types.KindFormula)
			packages.InstallErr["fish"] = errors.New(errors.ErrInstallFailed, "bottle missing")

			report := run()

			pkgs := reportFor(report, types.DomainPackages)
			Expect(pkgs.Outcomes).To(HaveLen(2))
			Expect(pkgs.Outcomes[0].Result).To(Equal(types.ResultFailed))
			Expect(pkgs.Outcomes[1].Result).To(Equal(types.ResultSuccess))
			Expect(report.Failed()).To(BeTrue())
			Expect(observer.started).To(HaveLen(5))
		})

		It("records a probe failure and continues with later domains", func() {
			packages.ProbeErr = errors.New(errors.ErrProbeUnavailable, "brew is broken")

			report := run()

			pkgs := reportFor(report, types.DomainPackages)
			Expect(pkgs.ProbeErr).To(HaveOccurred())
			Expect(pkgs.Outcomes).To(BeEmpty())
			Expect(reportFor(report, types.DomainDotfiles).Outcomes).To(HaveLen(2))
			Expect(report.Failed()).To(BeTrue())
			Expect(report.Totals().ProbeFailures).To(Equal(1))
		})

		It("fails only the dotfile whose link path cannot be inspected", func() {
			fsys.FailOn("lstat", "/home/u/.zshrc", os.ErrPermission)

			report := run()

			dots := reportFor(report, types.DomainDotfiles)
			Expect(dots.ProbeErr).NotTo(HaveOccurred())
			Expect(dots.Outcomes).To(HaveLen(2))
			Expect(dots.Outcomes[0].Action.Dotfile.Link).To(Equal("/home/u/.zshrc"))
			Expect(dots.Outcomes[0].Result).To(Equal(types.ResultFailed))
			Expect(dots.Outcomes[0].ErrorKind).To(Equal(errors.ErrSymlinkFailed))
			Expect(dots.Outcomes[1].Result).To(Equal(types.ResultSuccess))

			target, err := fsys.Readlink("/home/u/.config/nvim")
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal("/home/u/dotfiles/nvim"))
			Expect(report.Failed()).To(BeTrue())
			Expect(report.Totals().ProbeFailures).To(Equal(0))
		})

		It("skips a dotfile below a regular file and links the rest", func() {
			Expect(fsys.WriteFile("/home/u/.config", []byte("not a dir"), 0644)).To(Succeed())

			report := run()

			dots := reportFor(report, types.DomainDotfiles)
			Expect(dots.ProbeErr).NotTo(HaveOccurred())
			Expect(kinds(dots)).To(Equal([]types.ActionKind{types.ActionCreateSymlink, types.ActionSkipConflict}))
			Expect(dots.Outcomes[1].Result).To(Equal(types.ResultSkipped))

			target, err := fsys.Readlink("/home/u/.zshrc")
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal("/home/u/dotfiles/.zshrc"))
			data, err := fsys.ReadFile("/home/u/.config")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("not a dir"))
		})

		It("fails a preference whose value has the wrong type", func() {
			wrong := autohide
			wrong.Value = types.StringValue("yes")
			input.Preferences = []types.Preference{wrong}
			prefs.Current[autohide.Key] = types.BoolValue(true)

			out := reportFor(run(), types.DomainPreferences).Outcomes
			Expect(out).To(HaveLen(1))
			Expect(out[0].ErrorKind).To(Equal(errors.ErrInvalidPreferenceType))
			Expect(prefs.Writes).To(BeEmpty())
			Expect(prefs.Settled).To(BeEmpty())
		})
	})

	Describe("dry run", func() {
		It("reports every action skipped and changes nothing", func() {
			dryRun = true
			before := fsys.Paths()

			report := run()

			Expect(report.DryRun).To(BeTrue())
			Expect(report.Actions()).To(BeNumerically(">", 0))
			for _, dr := range report.Domains {
				for _, o := range dr.Outcomes {
					Expect(o.Result).To(Equal(types.ResultSkipped))
				}
			}
			Expect(report.Failed()).To(BeFalse())
			Expect(fsys.Paths()).To(Equal(before))
			Expect(packages.Installs).To(BeEmpty())
			Expect(prefs.Writes).To(BeEmpty())
			Expect(prefs.Settled).To(BeEmpty())
		})
	})

	Describe("configurable order", func() {
		It("visits domains in the configured order", func() {
			order = []types.Domain{
				types.DomainDotfiles, types.DomainPreferences,
				types.DomainPackages, types.DomainStoreApps, types.DomainExtensions,
			}

			run()
			Expect(observer.started).To(Equal(order))
			Expect(observer.finished).To(HaveLen(5))
		})
	})

	Describe("an empty desired state", func() {
		It("probes nothing and succeeds", func() {
			input = types.DesiredInput{}

			report := run()
			Expect(report.Actions()).To(Equal(0))
			Expect(packages.Probes).To(Equal(0))
			Expect(report.Failed()).To(BeFalse())
		})
	})
})
