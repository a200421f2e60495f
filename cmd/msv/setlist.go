package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/franz/score-stand/internal/meta"
	"github.com/franz/score-stand/internal/pathutil"
	"github.com/franz/score-stand/internal/setlist"
	"github.com/franz/score-stand/internal/util"
)

var setlistCmd = &cobra.Command{
	Use:   "setlist",
	Short: "Manage performance setlists",
	Long: `Manage named, ordered lists of scores with page ranges.

Setlists are stored together in one document in the data directory.
Positions shown by 'setlist show' are 1-based and are what 'remove'
and 'move' take.`,
}

var setlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List setlists and their sizes",
	RunE:  runSetlistList,
}

var setlistShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the items of a setlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetlistShow,
}

var setlistCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty setlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetlistCreate,
}

var setlistDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a setlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetlistDelete,
}

var setlistRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a setlist",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetlistRename,
}

var setlistAddCmd = &cobra.Command{
	Use:   "add <name> <score.pdf>",
	Short: "Append a score to a setlist",
	Long: `Append a score to a setlist.

Title and composer are taken from the library index when the score is
indexed, otherwise parsed from the filename. --start and --end narrow
playback to a page range (1-based, inclusive).`,
	Args: cobra.ExactArgs(2),
	RunE: runSetlistAdd,
}

var setlistRemoveCmd = &cobra.Command{
	Use:   "remove <name> <position>",
	Short: "Remove the item at a position",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetlistRemove,
}

var setlistMoveCmd = &cobra.Command{
	Use:   "move <name> <from> <to>",
	Short: "Move an item to a new position",
	Args:  cobra.ExactArgs(3),
	RunE:  runSetlistMove,
}

func init() {
	rootCmd.AddCommand(setlistCmd)

	setlistCmd.AddCommand(setlistListCmd)
	setlistCmd.AddCommand(setlistShowCmd)
	setlistCmd.AddCommand(setlistCreateCmd)
	setlistCmd.AddCommand(setlistDeleteCmd)
	setlistCmd.AddCommand(setlistRenameCmd)
	setlistCmd.AddCommand(setlistAddCmd)
	setlistCmd.AddCommand(setlistRemoveCmd)
	setlistCmd.AddCommand(setlistMoveCmd)

	setlistAddCmd.Flags().Int("start", 1, "first page to play (1-based)")
	setlistAddCmd.Flags().Int("end", 0, "last page to play (0 = through the end)")
}

// loadSetlists opens the setlist document. A corrupt document is
// reported and treated as empty; the bytes on disk stay as they are
// until the next mutation writes over them.
func loadSetlists() *setlist.Manager {
	mgr, err := setlist.Load(setlistPath())
	if err != nil {
		util.WarnLog("Setlist document unreadable, starting empty: %v", err)
	}
	return mgr
}

func runSetlistList(cmd *cobra.Command, args []string) error {
	mgr := loadSetlists()

	names := mgr.Names()
	if len(names) == 0 {
		util.InfoLog("No setlists yet. Create one with 'msv setlist create <name>'.")
		return nil
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		items, err := mgr.Items(name)
		if err != nil {
			return err
		}
		rows = append(rows, []string{name, strconv.Itoa(len(items))})
	}

	tbl := renderTable(
		[]string{"Setlist", "Items"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
	fmt.Fprint(os.Stdout, tbl)
	fmt.Printf("\n%d setlists\n", len(names))

	return nil
}

func runSetlistShow(cmd *cobra.Command, args []string) error {
	mgr := loadSetlists()

	items, err := mgr.Items(args[0])
	if err != nil {
		return err
	}
	if len(items) == 0 {
		util.InfoLog("Setlist %q is empty. Add scores with 'msv setlist add'.", args[0])
		return nil
	}

	rows := make([][]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			it.Title,
			it.Composer,
			pageRange(it),
			it.Path,
		})
	}

	tbl := renderTable(
		[]string{"#", "Title", "Composer", "Pages", "Path"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
	fmt.Fprint(os.Stdout, tbl)
	fmt.Printf("\n%d items\n", len(items))

	return nil
}

func runSetlistCreate(cmd *cobra.Command, args []string) error {
	mgr := loadSetlists()

	if err := mgr.Create(args[0]); err != nil {
		return err
	}
	util.SuccessLog("Created setlist %q", args[0])
	return nil
}

func runSetlistDelete(cmd *cobra.Command, args []string) error {
	mgr := loadSetlists()

	if err := mgr.Delete(args[0]); err != nil {
		return err
	}
	util.SuccessLog("Deleted setlist %q", args[0])
	return nil
}

func runSetlistRename(cmd *cobra.Command, args []string) error {
	mgr := loadSetlists()

	if err := mgr.Rename(args[0], args[1]); err != nil {
		return err
	}
	util.SuccessLog("Renamed setlist %q to %q", args[0], args[1])
	return nil
}

func runSetlistAdd(cmd *cobra.Command, args []string) error {
	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")

	native := util.ExpandPath(args[1])
	if abs, err := filepath.Abs(native); err == nil {
		native = abs
	}
	portable := pathutil.ToPortable(native)

	item := setlist.Item{Path: portable, StartPage: start}
	if end > 0 {
		item.EndPage = &end
	}

	// Prefer the indexed identity; fall back to parsing the filename.
	if db, err := openStore(databasePath()); err == nil {
		if sc, err := db.GetScoreByPath(portable); err == nil && sc != nil {
			item.Title = sc.Title
			item.Composer = sc.Composer
		}
		db.Close()
	}
	if item.Title == "" {
		parsed := meta.ParseFilename(filepath.Base(native))
		item.Title = parsed.Title
		item.Composer = parsed.Composer
	}

	mgr := loadSetlists()
	if err := mgr.Add(args[0], item); err != nil {
		return err
	}
	util.SuccessLog("Added %q to setlist %q", item.Title, args[0])
	return nil
}

func runSetlistRemove(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition(args[1])
	if err != nil {
		return err
	}

	mgr := loadSetlists()
	if err := mgr.Remove(args[0], pos-1); err != nil {
		return err
	}
	util.SuccessLog("Removed item %d from setlist %q", pos, args[0])
	return nil
}

func runSetlistMove(cmd *cobra.Command, args []string) error {
	from, err := parsePosition(args[1])
	if err != nil {
		return err
	}
	to, err := parsePosition(args[2])
	if err != nil {
		return err
	}

	mgr := loadSetlists()
	if err := mgr.Move(args[0], from-1, to-1); err != nil {
		return err
	}
	util.SuccessLog("Moved item %d to position %d in setlist %q", from, to, args[0])
	return nil
}

// parsePosition parses a 1-based item position as printed by show.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q (positions start at 1)", arg)
	}
	return n, nil
}

// pageRange formats an item's page bounds the way show displays them.
func pageRange(it setlist.Item) string {
	if it.EndPage != nil {
		return fmt.Sprintf("%d-%d", it.StartPage, *it.EndPage)
	}
	if it.StartPage > 1 {
		return fmt.Sprintf("%d-end", it.StartPage)
	}
	return "all"
}
