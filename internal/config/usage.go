package config

import (
	"flag"
	"fmt"

	"github.com/agbru/strassen/internal/ui"
)

// setCustomUsage installs a themed usage function on the flag set.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		t := ui.GetCurrentTheme()
		if ui.NoColorRequested() {
			t = ui.NoColorTheme
		}
		out := fs.Output()

		fmt.Fprintf(out, "\n%sStrassen Matrix Multiplier%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Sequential and parallel Strassen multiplication of square matrices.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags]\n\n%sFlags:%s\n", t.Warning, t.Reset, fs.Name(), t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			flagSig := "-" + f.Name
			if name != "" {
				flagSig += " " + name
			}
			fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, flagSig, t.Reset, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintf(out, "\nEvery flag can also be set through a %s* environment variable or a .env file.\n\n", EnvPrefix)
	}
}
