package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/planagent/planagent/engine"
	"github.com/planagent/planagent/extract"
	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/question"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
	if err := startApp(context.Background(), config); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func buildStrategies(ctx context.Context, config *Config, schema *plan.Schema) (extract.Extractor, question.Generator, error) {
	ruleExtractor := extract.NewRuleExtractor()
	ruleGenerator := question.NewRuleGenerator(schema)
	if config.APIKey == "" {
		return ruleExtractor, ruleGenerator, nil
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return nil, nil, err
	}
	toolExtractor, err := extract.NewToolBasedExtractor(cm)
	if err != nil {
		return nil, nil, err
	}
	modelGenerator, err := question.NewModelGenerator(schema, cm)
	if err != nil {
		return nil, nil, err
	}
	// LLM first, rules as degraded-mode fallback.
	return extract.NewFailbackExtractor(toolExtractor, ruleExtractor),
		question.NewFailbackGenerator(modelGenerator, ruleGenerator),
		nil
}

func startApp(ctx context.Context, config *Config) error {
	schema, err := plan.LoadSchema(config.SchemaPath)
	if err != nil {
		return err
	}
	extractor, generator, err := buildStrategies(ctx, config, schema)
	if err != nil {
		return err
	}
	eng, err := engine.New(schema, extractor, generator)
	if err != nil {
		return err
	}
	sessions := engine.NewSessions(eng, engine.WithTrimmer(engine.KeepLastNTrimmer{N: 50}))

	const sessionID = "travel"
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("여행 계획 도우미입니다. 원하시는 여행을 알려주세요. (예: 여행 계획을 도와주세요.)")
	started := false
	for {
		fmt.Print("사용자: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("입력이 종료되었습니다.")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		var res *engine.StepResult
		if !started {
			res, err = sessions.Start(ctx, sessionID, input)
		} else {
			res, err = sessions.Continue(ctx, sessionID, input)
		}
		if err != nil {
			if errors.Is(err, engine.ErrSessionNotFound) {
				started = false
				continue
			}
			return err
		}
		if res.Error != "" {
			fmt.Printf("오류가 발생했습니다. 같은 내용으로 다시 시도해주세요: %s\n", res.Error)
			continue
		}
		started = true

		if res.IsComplete {
			planJSON, _ := sonic.MarshalIndent(res.CurrentPlan, "", "  ")
			fmt.Printf("\n도우미: %s\n수집된 계획:\n%s\n", question.CompletionMessage, string(planJSON))
			if err := sessions.Reset(ctx, sessionID); err != nil {
				return err
			}
			return nil
		}
		fmt.Printf("\n도우미: %s\n======\n", res.AgentQuestion)
	}
}
