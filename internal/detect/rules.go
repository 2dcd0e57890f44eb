package detect

// rule maps a dependency name to the label reported for it.
type rule struct {
	dep   string
	label string
}

// Rule tables are evaluated top to bottom; the first dependency present wins.
// Meta-frameworks come before the libraries they are built on.
var frameworkRules = []rule{
	{"next", "Next.js"},
	{"nuxt", "Nuxt"},
	{"@remix-run/react", "Remix"},
	{"astro", "Astro"},
	{"@sveltejs/kit", "SvelteKit"},
	{"@angular/core", "Angular"},
	{"vue", "Vue"},
	{"svelte", "Svelte"},
	{"react", "React"},
	{"@nestjs/core", "NestJS"},
	{"express", "Express"},
	{"fastify", "Fastify"},
	{"hono", "Hono"},
}

var stylingRules = []rule{
	{"tailwindcss", "Tailwind CSS"},
	{"styled-components", "styled-components"},
	{"@emotion/react", "Emotion"},
	{"@mui/material", "Material UI"},
	{"@chakra-ui/react", "Chakra UI"},
	{"sass", "Sass"},
}

var databaseRules = []rule{
	{"@prisma/client", "Prisma"},
	{"prisma", "Prisma"},
	{"drizzle-orm", "Drizzle"},
	{"mongoose", "MongoDB"},
	{"typeorm", "TypeORM"},
	{"@supabase/supabase-js", "Supabase"},
	{"firebase", "Firebase"},
	{"pg", "PostgreSQL"},
	{"mysql2", "MySQL"},
	{"sequelize", "Sequelize"},
}

// lockfiles decide the package manager. bun is checked first because a bun
// project may also carry a yarn.lock for compatibility.
var lockfiles = []struct {
	file    string
	manager PackageManager
}{
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"pnpm-lock.yaml", PNPM},
	{"yarn.lock", Yarn},
}

// ecosystem describes a non-Node toolchain whose marker file overrides the
// language, runtime and commands detected from package.json.
type ecosystem struct {
	markers  []string
	language string
	runtime  string
	commands Commands
}

// ecosystemOverrides run in order after package.json; later entries win.
var ecosystemOverrides = []ecosystem{
	{
		markers:  []string{"pyproject.toml", "requirements.txt"},
		language: "Python",
		runtime:  "Python",
		commands: Commands{
			Dev:   "python main.py",
			Build: "python -m build",
			Test:  "pytest",
			Lint:  "ruff check .",
		},
	},
	{
		markers:  []string{"Cargo.toml"},
		language: "Rust",
		runtime:  "Cargo",
		commands: Commands{
			Dev:   "cargo run",
			Build: "cargo build --release",
			Test:  "cargo test",
			Lint:  "cargo clippy",
		},
	},
	{
		markers:  []string{"go.mod"},
		language: "Go",
		runtime:  "Go",
		commands: Commands{
			Dev:   "go run .",
			Build: "go build ./...",
			Test:  "go test ./...",
			Lint:  "golangci-lint run",
		},
	},
}

// firstMatch returns the label of the first rule whose dependency is present.
func firstMatch(rules []rule, deps map[string]string) string {
	for _, r := range rules {
		if _, ok := deps[r.dep]; ok {
			return r.label
		}
	}
	return ""
}
