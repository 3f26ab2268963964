package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcoot/battleship-go/internal/api/response"
	"github.com/mcoot/battleship-go/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.CreateGameResponse:
		o.printCreateGame(v)
	case response.CreateBotGameResponse:
		o.printCreateBotGame(v)
	case response.AcceptInviteResponse:
		o.printCredentials(v.Player)
	case response.Projection:
		o.printProjection(v)
	case response.MoveResponse:
		o.printMove(v)
	case response.HealthResponse:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printCredentials(c response.Credentials) {
	fmt.Printf("Game: %s\n", c.GameID)
	fmt.Printf("Player: %s\n", c.PlayerID)
	fmt.Printf("Token: %s\n", c.Token)
}

func (o *Output) printCreateGame(r response.CreateGameResponse) {
	o.printCredentials(r.Player)
	fmt.Printf("Invite: %s\n", r.InviteID)
	fmt.Printf("\nShare the invite with your opponent:\n  bsgame invite accept %s\n", r.InviteID)
}

func (o *Output) printCreateBotGame(r response.CreateBotGameResponse) {
	o.printCredentials(r.Player)
	fmt.Printf("Bot: %s\n", r.BotID)
}

func (o *Output) printMove(m response.MoveResponse) {
	result := "Miss"
	if m.Move.Hit {
		result = "Hit"
	}
	fmt.Printf("%s at (%d, %d)\n", result, m.Move.X, m.Move.Y)
	if m.ShipJustSunk != "" {
		fmt.Printf("You sank the %s!\n", m.ShipJustSunk)
	}
	if m.GameOver {
		fmt.Printf("Game over. Winner: %s\n", m.WinnerID)
	}
}

func (o *Output) printProjection(p response.Projection) {
	fmt.Printf("Game: %s\n", p.GameID)
	fmt.Printf("Status: %s\n", p.Status)
	fmt.Printf("Opponent: %s (%s)\n", p.OpponentName, p.OpponentID)

	switch {
	case p.PlayerIDWinner != "":
		if p.PlayerIDWinner == p.PlayerID {
			fmt.Println("You won!")
		} else {
			fmt.Println("You lost.")
		}
		if p.WinnerMessage != "" {
			fmt.Printf("Winner says: %s\n", p.WinnerMessage)
		}
	case p.Status == string(model.GameStatusInProgress):
		if p.IsMyTurn {
			fmt.Println("Your turn")
		} else {
			fmt.Println("Opponent's turn")
		}
	default:
		fmt.Printf("Your fleet placed: %s\n", yesNo(p.PositionsAreSet))
		fmt.Printf("Opponent fleet placed: %s\n", yesNo(p.OpponentPositionsAreSet))
	}

	fmt.Println("\nYour Board:")
	o.printBoard(ownBoard(p))
	fmt.Println("\nTarget Board:")
	o.printBoard(targetBoard(p))

	if len(p.OpponentShipsSunk) > 0 {
		fmt.Printf("\nSunk: %s\n", strings.Join(p.OpponentShipsSunk, ", "))
	}
	if len(p.ShipsSunk) > 0 {
		fmt.Printf("Lost: %s\n", strings.Join(p.ShipsSunk, ", "))
	}
}

type board [model.BoardSize][model.BoardSize]byte

var shipMarks = map[string]byte{
	string(model.ShipCarrier):    'C',
	string(model.ShipBattleship): 'B',
	string(model.ShipCruiser):    'R',
	string(model.ShipSubmarine):  'S',
	string(model.ShipDestroyer):  'D',
}

// ownBoard marks the viewer's ships and the opponent's shots,
// X for a hit and o for a miss
func ownBoard(p response.Projection) *board {
	var b board
	for kind, cells := range p.Positions {
		for _, c := range cells {
			if inBounds(c.X, c.Y) {
				b[c.X][c.Y] = shipMarks[kind]
			}
		}
	}
	markShots(&b, p.OpponentMoves)
	return &b
}

// targetBoard shows the viewer's shots at the opponent
func targetBoard(p response.Projection) *board {
	var b board
	markShots(&b, p.Moves)
	return &b
}

func markShots(b *board, shots []response.Shot) {
	for _, s := range shots {
		if !inBounds(s.X, s.Y) {
			continue
		}
		if s.Hit {
			b[s.X][s.Y] = 'X'
		} else {
			b[s.X][s.Y] = 'o'
		}
	}
}

func inBounds(x, y int) bool {
	return x >= 0 && x < model.BoardSize && y >= 0 && y < model.BoardSize
}

func (o *Output) printBoard(b *board) {
	size := len(b)

	// Print column headers
	fmt.Print("    ")
	for col := 0; col < size; col++ {
		fmt.Printf(" %d ", col)
	}
	fmt.Println()

	// Print top border
	fmt.Print("   +")
	for col := 0; col < size; col++ {
		fmt.Print("---")
	}
	fmt.Println("+")

	// Print rows
	for row := 0; row < size; row++ {
		fmt.Printf(" %d |", row)
		for col := 0; col < size; col++ {
			cell := b[row][col]
			if cell == 0 {
				fmt.Print(" . ")
			} else {
				fmt.Printf(" %c ", cell)
			}
		}
		fmt.Println("|")
	}

	// Print bottom border
	fmt.Print("   +")
	for col := 0; col < size; col++ {
		fmt.Print("---")
	}
	fmt.Println("+")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
