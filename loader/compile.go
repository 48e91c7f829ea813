package loader

import (
	"encoding/json"
	"fmt"

	"github.com/tessera-games/lingoquest/engine/quest"
	"github.com/tessera-games/lingoquest/types"
)

// Raw artifact shapes, mirroring the generator's JSON output. Fields
// the engine does not consume are simply not declared.

type rawCatalog struct {
	skills      rawSkills
	triggers    rawTriggers
	quests      rawQuests
	progression rawProgression
	items       rawItems
	worldMap    rawMap
	npcs        rawNPCs
}

type rawSkills struct {
	Skills []rawSkill `json:"skills"`
}

type rawSkill struct {
	ID                 string              `json:"id"`
	Name               types.BilingualText `json:"name"`
	Description        types.BilingualText `json:"description"`
	Category           string              `json:"category"`
	Difficulty         string              `json:"difficulty"`
	MaxLevel           int                 `json:"max_level"`
	Prerequisites      []string            `json:"prerequisites"`
	Weight             float64             `json:"weight"`
	EvaluationCriteria []string            `json:"evaluation_criteria"`
}

type rawTriggers struct {
	Triggers []rawTrigger `json:"triggers"`
}

type rawTrigger struct {
	SkillID              string          `json:"skill_id"`
	PointsAwarded        int             `json:"points_awarded"`
	Trigger              json.RawMessage `json:"trigger"`
	Repeatable           bool            `json:"repeatable"`
	CooldownInteractions int             `json:"cooldown_interactions"`
	Description          string          `json:"description"`
}

// rawCondition covers both condition shapes: a leaf carries
// trigger_type, a compound carries logic + conditions.
type rawCondition struct {
	TriggerType string            `json:"trigger_type"`
	TargetID    string            `json:"target_id"`
	Operator    string            `json:"operator"`
	Threshold   int               `json:"threshold"`
	Logic       string            `json:"logic"`
	Conditions  []json.RawMessage `json:"conditions"`
}

type rawQuests struct {
	Quests []rawQuest `json:"quests"`
}

type rawQuest struct {
	ID            string              `json:"id"`
	Name          types.BilingualText `json:"name"`
	Description   types.BilingualText `json:"description"`
	GiverNPCID    string              `json:"giver_npc_id"`
	LanguageLevel string              `json:"language_level"`
	Tasks         []rawTask           `json:"tasks"`
	Rewards       rawRewards          `json:"rewards"`
	Unlock        rawUnlockReqs       `json:"unlock_requirements"`
}

type rawTask struct {
	ID             string              `json:"id"`
	Order          int                 `json:"order"`
	Description    types.BilingualText `json:"description"`
	CompletionType string              `json:"completion_type"`
	Criteria       rawCriteria         `json:"completion_criteria"`
	OnComplete     rawTaskEffects      `json:"on_complete"`
}

type rawCriteria struct {
	TargetID   string `json:"target_id"`
	LocationID string `json:"location_id"`
	NPCID      string `json:"npc_id"`
	ItemID     string `json:"item_id"`
	FlagName   string `json:"flag_name"`
}

type rawTaskEffects struct {
	SetFlags        []string `json:"set_flags"`
	GiveItems       []string `json:"give_items"`
	UnlockLocations []string `json:"unlock_locations"`
}

type rawRewards struct {
	Experience int      `json:"experience"`
	Items      []string `json:"items"`
	StoryFlags []string `json:"story_flags"`
	Unlocks    struct {
		Locations []string `json:"locations"`
		Quests    []string `json:"quests"`
	} `json:"unlocks"`
}

type rawUnlockReqs struct {
	MinimumLevel   string   `json:"minimum_level"`
	RequiredQuests []string `json:"required_quests"`
}

type rawProgression struct {
	Requirements []rawRequirement `json:"requirements"`
	LevelOrder   []string         `json:"_level_order"`
}

type rawRequirement struct {
	FromLevel               string         `json:"from_level"`
	ToLevel                 string         `json:"to_level"`
	MinimumTotalSkillPoints int            `json:"minimum_total_skill_points"`
	RequiredSkillThresholds []rawThreshold `json:"required_skill_thresholds"`
	FlexibleSkillPool       []string       `json:"flexible_skill_pool"`
	FlexibleSkillCount      int            `json:"flexible_skill_count"`
	FlexibleThreshold       int            `json:"flexible_threshold"`
	Description             string         `json:"description"`
}

type rawThreshold struct {
	SkillID      string `json:"skill_id"`
	MinimumLevel int    `json:"minimum_level"`
}

type rawItems struct {
	Items []rawItem `json:"items"`
}

type rawItem struct {
	ID             string              `json:"id"`
	Name           types.BilingualText `json:"name"`
	LocationID     string              `json:"location_id"`
	VocabularyWord types.BilingualText `json:"vocabulary_word"`
	Price          int                 `json:"price"`
}

type rawMap struct {
	Locations        []rawLocation `json:"locations"`
	StartingLocation string        `json:"starting_location"`
}

type rawLocation struct {
	ID           string              `json:"id"`
	Name         types.BilingualText `json:"name"`
	MinimumLevel string              `json:"minimum_language_level"`
	Connections  []string            `json:"connections"`
}

type rawNPCs struct {
	NPCs []rawNPC `json:"npcs"`
}

type rawNPC struct {
	ID         string              `json:"id"`
	Name       types.BilingualText `json:"name"`
	LocationID string              `json:"location_id"`
	Greeting   types.BilingualText `json:"greeting"`
}

// compile turns raw artifacts into the typed catalog. Structural
// defects (undecodable conditions, empty compound nodes) fail here.
func compile(raw *rawCatalog) (*types.Catalog, error) {
	cat := &types.Catalog{
		Skills:      map[string]types.Skill{},
		Items:       map[string]types.Item{},
		Locations:   map[string]types.Location{},
		NPCs:        map[string]types.NPC{},
		Aliases:     map[string]string{},
		StartingLoc: raw.worldMap.StartingLocation,
	}

	for _, rs := range raw.skills.Skills {
		cat.Skills[rs.ID] = types.Skill{
			ID:                 rs.ID,
			Name:               rs.Name,
			Description:        rs.Description,
			Category:           types.SkillCategory(rs.Category),
			Difficulty:         types.LevelID(rs.Difficulty),
			MaxLevel:           rs.MaxLevel,
			Prerequisites:      rs.Prerequisites,
			Weight:             rs.Weight,
			EvaluationCriteria: rs.EvaluationCriteria,
		}
		cat.SkillOrder = append(cat.SkillOrder, rs.ID)
	}

	for i, rt := range raw.triggers.Triggers {
		cond, err := compileCondition(rt.Trigger)
		if err != nil {
			return nil, fmt.Errorf("trigger %d (%q): %w", i, rt.Description, err)
		}
		cat.Triggers = append(cat.Triggers, types.Trigger{
			SkillID:              rt.SkillID,
			PointsAwarded:        rt.PointsAwarded,
			Repeatable:           rt.Repeatable,
			CooldownInteractions: rt.CooldownInteractions,
			Description:          rt.Description,
			Condition:            cond,
		})
	}

	if len(raw.progression.LevelOrder) > 0 {
		order := make([]types.LevelID, 0, len(raw.progression.LevelOrder))
		for _, lvl := range raw.progression.LevelOrder {
			order = append(order, types.LevelID(lvl))
		}
		cat.Progression.LevelOrder = order
	} else {
		cat.Progression.LevelOrder = defaultLevelOrder
	}
	for _, rr := range raw.progression.Requirements {
		req := types.LevelRequirement{
			FromLevel:               types.LevelID(rr.FromLevel),
			ToLevel:                 types.LevelID(rr.ToLevel),
			MinimumTotalSkillPoints: rr.MinimumTotalSkillPoints,
			FlexibleSkillPool:       rr.FlexibleSkillPool,
			FlexibleSkillCount:      rr.FlexibleSkillCount,
			FlexibleThreshold:       rr.FlexibleThreshold,
			Description:             rr.Description,
		}
		for _, th := range rr.RequiredSkillThresholds {
			req.RequiredSkillThresholds = append(req.RequiredSkillThresholds, types.SkillThreshold{
				SkillID:      th.SkillID,
				MinimumLevel: th.MinimumLevel,
			})
		}
		cat.Progression.Requirements = append(cat.Progression.Requirements, req)
	}

	for _, rq := range raw.quests.Quests {
		q := types.Quest{
			ID:          rq.ID,
			Name:        rq.Name,
			Description: rq.Description,
			GiverNPC:    rq.GiverNPCID,
			Level:       types.LevelID(rq.LanguageLevel),
			Rewards: types.QuestRewards{
				Experience: rq.Rewards.Experience,
				Items:      rq.Rewards.Items,
				StoryFlags: rq.Rewards.StoryFlags,
			},
			Unlock: types.QuestUnlockRequirements{
				MinimumLevel:   types.LevelID(rq.Unlock.MinimumLevel),
				RequiredQuests: rq.Unlock.RequiredQuests,
			},
		}
		q.Rewards.UnlockLocations = rq.Rewards.Unlocks.Locations
		q.Rewards.UnlockQuests = rq.Rewards.Unlocks.Quests
		for _, rt := range rq.Tasks {
			q.Tasks = append(q.Tasks, types.QuestTask{
				ID:          rt.ID,
				Order:       rt.Order,
				Description: rt.Description,
				Type:        types.CompletionType(rt.CompletionType),
				Criteria:    compileCriteria(types.CompletionType(rt.CompletionType), rt.Criteria),
				OnComplete: types.TaskEffects{
					SetFlags:        rt.OnComplete.SetFlags,
					GiveItems:       rt.OnComplete.GiveItems,
					UnlockLocations: rt.OnComplete.UnlockLocations,
				},
			})
		}
		quest.SortTasks(&q)
		cat.Quests = append(cat.Quests, q)
	}

	for _, ri := range raw.items.Items {
		cat.Items[ri.ID] = types.Item{
			ID:             ri.ID,
			Name:           ri.Name,
			LocationID:     ri.LocationID,
			VocabularyWord: ri.VocabularyWord,
			Price:          ri.Price,
		}
		if word := ri.VocabularyWord.Target; word != "" {
			cat.Aliases[word] = ri.ID
		}
	}

	for _, rl := range raw.worldMap.Locations {
		cat.Locations[rl.ID] = types.Location{
			ID:           rl.ID,
			Name:         rl.Name,
			MinimumLevel: types.LevelID(rl.MinimumLevel),
			Connections:  rl.Connections,
		}
	}
	if cat.StartingLoc == "" && len(raw.worldMap.Locations) > 0 {
		cat.StartingLoc = raw.worldMap.Locations[0].ID
	}

	for _, rn := range raw.npcs.NPCs {
		cat.NPCs[rn.ID] = types.NPC{
			ID:         rn.ID,
			Name:       rn.Name,
			LocationID: rn.LocationID,
			Greeting:   rn.Greeting,
		}
	}

	return cat, nil
}

// compileCondition decodes one condition node, recursing through
// compound children. Leaves carry trigger_type; compounds carry logic.
func compileCondition(data json.RawMessage) (types.Condition, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing condition")
	}
	var rc rawCondition
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("decoding condition: %w", err)
	}

	if rc.Logic == "" {
		return types.Leaf{
			Trigger:   types.TriggerType(rc.TriggerType),
			TargetID:  rc.TargetID,
			Op:        types.Operator(rc.Operator),
			Threshold: rc.Threshold,
		}, nil
	}

	children := make([]types.Condition, 0, len(rc.Conditions))
	for i, child := range rc.Conditions {
		c, err := compileCondition(child)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		children = append(children, c)
	}

	switch rc.Logic {
	case "AND":
		return types.NewAnd(children...)
	case "OR":
		return types.NewOr(children...)
	default:
		return nil, fmt.Errorf("unknown compound logic %q", rc.Logic)
	}
}

// compileCriteria picks the id field matching the completion type,
// falling back to whichever id is present.
func compileCriteria(ct types.CompletionType, rc rawCriteria) types.CompletionCriteria {
	crit := types.CompletionCriteria{FlagName: rc.FlagName}
	switch ct {
	case types.CompleteAtLocation:
		crit.TargetID = firstNonEmpty(rc.LocationID, rc.TargetID)
	case types.CompleteTalkedTo:
		crit.TargetID = firstNonEmpty(rc.NPCID, rc.TargetID)
	case types.CompleteHasItem, types.CompleteGaveItem, types.CompleteReceivedItem:
		crit.TargetID = firstNonEmpty(rc.ItemID, rc.TargetID)
	default:
		crit.TargetID = firstNonEmpty(rc.TargetID, rc.ItemID, rc.NPCID, rc.LocationID)
	}
	return crit
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
