package mcp

import (
	"context"

	"github.com/claude/liftscribe/internal/parse"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolParseWorkout = mcp.NewTool("parse_workout",
	mcp.WithDescription("Parse freeform workout text (training notes, a message, a whiteboard photo transcription) into a structured, persisted workout. Returns the full workout with blocks, exercises, and sets."),
	mcp.WithString("text", mcp.Required(), mcp.Description("The raw workout text to parse")),
	mcp.WithString("date", mcp.Description("Workout date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithString("weight_unit", mcp.Description("Default weight unit for sets. Defaults to lbs."), mcp.Enum("lbs", "kg")),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by name. Uses fuzzy matching, so partial names and common abbreviations work (e.g. 'db press')."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Exercise name or fragment to search for")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Fetch one workout by ID with its full block/exercise/set breakdown."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolListReviewExercises = mcp.NewTool("list_review_exercises",
	mcp.WithDescription("List exercises that were auto-created during parsing and still need human review."),
)

// --- Tool handlers ---

func (h *handlers) parseWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	workout, err := h.pipeline.Parse(ctx, text, parse.Options{
		Date:       req.GetString("date", ""),
		WeightUnit: req.GetString("weight_unit", ""),
		UserID:     UserIDFromContext(ctx),
	})
	if err != nil {
		if !parse.UserFacing(err) {
			h.log.Error("mcp parse_workout", "kind", parse.KindOf(err), "error", err)
		}
		return mcp.NewToolResultError("parse failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	matches, err := h.db.SearchExercisesByName(ctx, query, 20)
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(matches)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout ID"), nil
	}

	workout, err := h.db.GetWorkout(ctx, workoutID, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("workout not found"), nil
	}

	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listReviewExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := h.db.ListExercisesNeedingReview(ctx, 100)
	if err != nil {
		h.log.Error("mcp list_review_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
