package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Commands understood by the CLI
var Commands = []string{"classify", "scan", "catalog", "stats"}

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	return parseArguments(os.Args[1:])
}

func parseArguments(argv []string) map[string]string {
	args := make(map[string]string)

	// First, identify the command
	commandIndex := -1
	for i, arg := range argv {
		if isCommand(arg) {
			args["command"] = arg
			commandIndex = i
			break
		}
	}

	for i := 0; i < len(argv); i++ {
		if i == commandIndex {
			continue
		}

		arg := argv[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			args[strings.TrimPrefix(parts[0], "--")] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// A flag followed by another flag, the command or nothing is boolean
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "--") || i+1 == commandIndex {
				args[flagName] = "true"
			} else {
				args[flagName] = argv[i+1]
				i++
			}
		}
	}

	return args
}

func isCommand(arg string) bool {
	for _, c := range Commands {
		if arg == c {
			return true
		}
	}
	return false
}

// GetDefaultDatabasePath returns the default path for the database file
func GetDefaultDatabasePath() string {
	exePath, err := os.Executable()
	if err != nil {
		return "tiles.db"
	}
	return filepath.Join(filepath.Dir(exePath), "tiles.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s classify --image=PATH [--class=ccc|clc|clh|cxx] [--catalog=JSON] [tuning flags] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s scan --folder=PATH [--database=PATH] [--prefix=NAME] [--force] [--rename] [--exif] [tuning flags] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s catalog [--catalog=JSON]\n", os.Args[0])
	fmt.Printf("  %s stats [--database=PATH] [--prefix=NAME]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --image          : Path to a single tile crop\n")
	fmt.Printf("  --folder         : Path to folder with tile crops (class subfolders ccc, clc, clh, cxx)\n")
	fmt.Printf("  --class          : Detector class of the crop, restricts candidate tiles\n")
	fmt.Printf("  --catalog        : JSON file replacing the built-in tile catalog\n")
	fmt.Printf("  --database       : Path to database file (default: %s)\n", GetDefaultDatabasePath())
	fmt.Printf("  --prefix         : Source prefix for scanning/filtering results\n")
	fmt.Printf("  --force          : Classify again and overwrite existing entries\n")
	fmt.Printf("  --rename         : Append _tile_<n> to recognized crop files\n")
	fmt.Printf("  --exif           : Store camera and capture time (needs exiftool)\n")
	fmt.Printf("  --debug          : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile        : Specify custom log file path (default: tantrixfinder.log)\n")
	fmt.Printf("\nTuning flags:\n")
	fmt.Printf("  --tolerance      : Mismatched edges accepted for a best-effort match (default: 1)\n")
	fmt.Printf("  --margin         : Distance the runner-up must trail by (default: 1)\n")
	fmt.Printf("  --reflect        : Also match mirrored tiles\n")
	fmt.Printf("  --min-separation : Smallest RGB distance between line colours (default: 45)\n")
	fmt.Printf("  --no-phase       : Sample at fixed angles instead of searching the tile rotation\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s classify --image=crops/ccc/img_12.png --class=ccc\n", os.Args[0])
	fmt.Printf("  %s scan --folder=/path/to/crops --prefix=Box1 --rename --debug\n", os.Args[0])
}

// ParseThreshold parses a non-negative decimal flag value, returning def
// with an error when the value is unusable
func ParseThreshold(value string, def float64) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return def, fmt.Errorf("Invalid value '%s', using default (%g)", value, def)
	}
	return parsed, nil
}

// ParseCount parses a non-negative integer flag value, returning def with an
// error when the value is unusable
func ParseCount(value string, def int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return def, fmt.Errorf("Invalid count '%s', using default (%d)", value, def)
	}
	return parsed, nil
}
