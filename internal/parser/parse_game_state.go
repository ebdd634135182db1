package parser

import (
	"encoding/json"
	"fmt"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
)

// ParseGameState builds a validated snapshot. Any invariant violation is
// returned as *core.DecodeError and no partial snapshot is produced.
func (p *Parser) ParseGameState(data packet.GameStatePayload) (core.Snapshot, error) {
	teams := make([]core.Team, 0, len(data.Teams))
	for _, t := range data.Teams {
		team := core.Team{Name: t.Name, Color: t.Color, Score: t.Score}
		for _, pl := range t.Players {
			team.Players = append(team.Players, core.Player{
				ID:           pl.ID,
				Nickname:     pl.Nickname,
				Ping:         pl.Ping,
				Score:        pl.Score,
				TicksToRegen: pl.TicksToRegen,
			})
		}
		teams = append(teams, team)
	}

	rows := make([][]core.Tile, len(data.Map.Tiles))
	for y, rawRow := range data.Map.Tiles {
		row := make([]core.Tile, len(rawRow))
		for x, rawTile := range rawRow {
			tile, err := p.parseTile(y, x, rawTile)
			if err != nil {
				return core.Snapshot{}, err
			}
			row[x] = tile
		}
		rows[y] = row
	}

	grid, err := core.NewGrid(rows)
	if err != nil {
		return core.Snapshot{}, err
	}

	zones := make([]core.Zone, 0, len(data.Map.Zones))
	for i, z := range data.Map.Zones {
		zone, err := parseZone(i, z)
		if err != nil {
			return core.Snapshot{}, err
		}
		zones = append(zones, zone)
	}

	snap, err := core.NewSnapshot(data.ID, data.Tick, data.PlayerID, teams, grid, zones)
	if err != nil {
		return core.Snapshot{}, err
	}

	p.logger.Debug("Parsed game state",
		"tick", snap.Tick,
		"width", grid.Width(),
		"height", grid.Height(),
		"zones", len(zones))
	return snap, nil
}

func (p *Parser) parseTile(y, x int, raw packet.Tile) (core.Tile, error) {
	base := fmt.Sprintf("map.tiles[%d][%d]", y, x)
	zone, err := parseName(base+".zoneName", raw.ZoneName)
	if err != nil {
		return core.Tile{}, err
	}
	tile := core.Tile{Visible: raw.IsVisible, Zone: zone}
	if len(raw.Objects) > 0 {
		tile.Objects = make([]core.Occupant, 0, len(raw.Objects))
	}
	for i, obj := range raw.Objects {
		occ, err := parseOccupant(fmt.Sprintf("%s.objects[%d]", base, i), obj)
		if err != nil {
			return core.Tile{}, err
		}
		tile.Objects = append(tile.Objects, occ)
	}
	return tile, nil
}

func parseOccupant(path string, obj packet.Object) (core.Occupant, error) {
	switch obj.Type {
	case packet.ObjectWall:
		return parseWall(path, obj.Payload)
	case packet.ObjectTank:
		var raw packet.TankPayload
		if err := decodeObject(path, obj.Payload, &raw); err != nil {
			return nil, err
		}
		return parseTank(path, raw)
	case packet.ObjectBullet:
		var raw packet.BulletPayload
		if err := decodeObject(path, obj.Payload, &raw); err != nil {
			return nil, err
		}
		dir, err := parseDirection(path+".direction", raw.Direction)
		if err != nil {
			return nil, err
		}
		kind := core.BulletKind(raw.Type)
		if raw.Type < 0 || !kind.Valid() {
			return nil, &core.DecodeError{Path: path + ".type", Reason: fmt.Sprintf("unknown bullet type %d", raw.Type)}
		}
		return core.Bullet{ID: raw.ID, Type: kind, Speed: raw.Speed, Direction: dir}, nil
	case packet.ObjectLaser:
		var raw packet.LaserPayload
		if err := decodeObject(path, obj.Payload, &raw); err != nil {
			return nil, err
		}
		o := core.LaserOrientation(raw.Orientation)
		if raw.Orientation < 0 || !o.Valid() {
			return nil, &core.DecodeError{Path: path + ".orientation", Reason: fmt.Sprintf("unknown laser orientation %d", raw.Orientation)}
		}
		return core.Laser{ID: raw.ID, Orientation: o}, nil
	case packet.ObjectMine:
		var raw packet.MinePayload
		if err := decodeObject(path, obj.Payload, &raw); err != nil {
			return nil, err
		}
		return core.Mine{ID: raw.ID, ExplosionRemainingTicks: raw.ExplosionRemainingTicks}, nil
	default:
		return nil, &core.DecodeError{Path: path + ".type", Reason: fmt.Sprintf("unknown occupant %q", obj.Type)}
	}
}

func decodeObject(path string, payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return &core.DecodeError{Path: path + ".payload", Reason: "missing payload"}
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return &core.DecodeError{Path: path + ".payload", Reason: err.Error()}
	}
	return nil
}

func parseWall(path string, payload json.RawMessage) (core.Wall, error) {
	if len(payload) == 0 || string(payload) == "null" {
		return core.Wall{Type: core.SolidWall}, nil
	}
	var raw packet.WallPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return core.Wall{}, &core.DecodeError{Path: path + ".payload", Reason: err.Error()}
	}
	switch raw.Type {
	case "", "solid":
		return core.Wall{Type: core.SolidWall}, nil
	case "penetrable":
		return core.Wall{Type: core.PenetrableWall}, nil
	default:
		return core.Wall{}, &core.DecodeError{Path: path + ".payload.type", Reason: fmt.Sprintf("unknown wall type %q", raw.Type)}
	}
}

func parseTank(path string, raw packet.TankPayload) (core.Tank, error) {
	kind, err := parseTankKind(path+".type", raw.Type)
	if err != nil {
		return core.Tank{}, err
	}
	dir, err := parseDirection(path+".direction", raw.Direction)
	if err != nil {
		return core.Tank{}, err
	}
	turretDir, err := parseDirection(path+".turret.direction", raw.Turret.Direction)
	if err != nil {
		return core.Tank{}, err
	}

	tank := core.Tank{
		OwnerID:   raw.OwnerID,
		Type:      kind,
		Direction: dir,
		Turret: core.Turret{
			Direction:            turretDir,
			BulletCount:          raw.Turret.BulletCount,
			TicksToBullet:        raw.Turret.TicksToBullet,
			TicksToDoubleBullet:  raw.Turret.TicksToDoubleBullet,
			TicksToLaser:         raw.Turret.TicksToLaser,
			TicksToHealingBullet: raw.Turret.TicksToHealingBullet,
			TicksToStunBullet:    raw.Turret.TicksToStunBullet,
		},
		Health:       raw.Health,
		TicksToMine:  raw.TicksToMine,
		TicksToRadar: raw.TicksToRadar,
		IsUsingRadar: raw.IsUsingRadar,
	}
	if raw.Visibility != nil {
		mask, err := parseVisibility(path+".visibility", raw.Visibility)
		if err != nil {
			return core.Tank{}, err
		}
		tank.Visibility = mask
	}
	return tank, nil
}

// parseVisibility decodes rows of '0'/'1' characters. Dimensions are
// checked against the grid by core.NewSnapshot.
func parseVisibility(path string, rows []string) (core.VisibilityMask, error) {
	mask := make(core.VisibilityMask, len(rows))
	for y, row := range rows {
		mask[y] = make([]bool, len(row))
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '1':
				mask[y][x] = true
			case '0':
			default:
				return nil, &core.DecodeError{
					Path:   fmt.Sprintf("%s[%d][%d]", path, y, x),
					Reason: fmt.Sprintf("unexpected visibility character %q", row[x]),
				}
			}
		}
	}
	return mask, nil
}

func parseZone(i int, raw packet.Zone) (core.Zone, error) {
	path := fmt.Sprintf("map.zones[%d]", i)
	name, err := parseName(path+".name", &raw.Name)
	if err != nil {
		return core.Zone{}, err
	}
	status, err := core.NewZoneStatus(raw.Status.Type, core.StatusFields{
		RemainingTicks: raw.Status.RemainingTicks,
		PlayerID:       raw.Status.PlayerID,
		CapturedByID:   raw.Status.CapturedByID,
		RetakenByID:    raw.Status.RetakenByID,
	})
	if err != nil {
		if de, ok := err.(*core.DecodeError); ok {
			de.Path = path + "." + de.Path
		}
		return core.Zone{}, err
	}
	return core.Zone{
		X:      raw.X,
		Y:      raw.Y,
		Width:  raw.Width,
		Height: raw.Height,
		Name:   name,
		Status: status,
	}, nil
}
