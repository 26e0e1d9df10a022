package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockAPI is the subset of the Bedrock runtime client used by BedrockConverser.
type BedrockAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockConverser calls the Bedrock Converse API.
type BedrockConverser struct {
	client BedrockAPI
}

// NewBedrockConverser creates a Converser backed by Bedrock.
func NewBedrockConverser(client BedrockAPI) *BedrockConverser {
	return &BedrockConverser{client: client}
}

func (c *BedrockConverser) Converse(ctx context.Context, req Request) (string, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(req.ModelID),
		Messages: make([]types.Message, 0, len(req.Messages)),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:     aws.Int32(int32(req.Inference.MaxTokens)),
			Temperature:   aws.Float32(req.Inference.Temperature),
			TopP:          aws.Float32(req.Inference.TopP),
			StopSequences: req.Inference.StopSequences,
		},
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}
	for _, m := range req.Messages {
		role := types.ConversationRoleUser
		if m.Role == RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		input.Messages = append(input.Messages, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Text}},
		})
	}

	out, err := c.client.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("bedrock converse %s: %w", req.ModelID, err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock converse %s: unexpected output type %T", req.ModelID, out.Output)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", fmt.Errorf("bedrock converse %s: %w", req.ModelID, ErrEmptyOutput)
	}
	return reply, nil
}
