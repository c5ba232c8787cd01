package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	baseURL    = flag.String("base", "http://localhost:8080", "服务地址")
	totalUsers = flag.Int("users", 200, "并发匿名用户数")
	httpClient *http.Client
)

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type counts struct {
	ID           string `json:"id"`
	ViewCount    int    `json:"viewCount"`
	CommentCount int    `json:"commentCount"`
	VoteCount    int    `json:"voteCount"`
}

// main 并发投票与浏览，最后核对计数是否与实际记录一致
func main() {
	flag.Parse()
	n := *totalUsers

	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out struct {
				Token string `json:"token"`
			}
			if err := call(http.MethodPost, "/auth/guest", "", nil, &out); err != nil {
				fmt.Printf("注册失败: %v\n", err)
				return
			}
			tokens[i] = out.Token
		}(i)
	}
	wg.Wait()
	for _, t := range tokens {
		if t == "" {
			os.Exit(1)
		}
	}

	var post counts
	must(call(http.MethodPost, "/posts", tokens[0], map[string]interface{}{
		"title":   "Stress test thread",
		"content": "Concurrent votes and views land here.",
		"tags":    []string{"stress"},
	}, &post))
	var comment counts
	must(call(http.MethodPost, "/posts/"+post.ID+"/comments", tokens[0], map[string]interface{}{
		"content": "Vote on me",
	}, &comment))

	fmt.Printf("开始压测：%d 个用户并发浏览帖子并给评论投票 (post=%s comment=%s)\n", n, post.ID, comment.ID)

	var expected, failed int64
	start := time.Now()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := 1
			if i%3 == 0 {
				value = -1
			}
			if err := call(http.MethodGet, "/posts/"+post.ID, tokens[i], nil, nil); err != nil {
				atomic.AddInt64(&failed, 1)
			}
			if err := call(http.MethodPost, "/comments/"+comment.ID+"/vote", tokens[i], map[string]int{"value": value}, nil); err != nil {
				atomic.AddInt64(&failed, 1)
				return
			}
			atomic.AddInt64(&expected, int64(value))
		}(i)
	}
	wg.Wait()
	duration := time.Since(start)

	// 作者已浏览过，再次读取不会计数
	var after counts
	must(call(http.MethodGet, "/posts/"+post.ID, tokens[0], nil, &after))
	var page struct {
		List []counts `json:"list"`
	}
	must(call(http.MethodGet, "/posts/"+post.ID+"/comments?limit=1", "", nil, &page))
	if len(page.List) == 0 {
		fmt.Println("评论丢失")
		os.Exit(1)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(2*n)/duration.Seconds())
	fmt.Printf("失败请求: %d\n", failed)
	fmt.Printf("浏览数: %d (预期: %d)\n", after.ViewCount, n)
	fmt.Printf("评论得票: %d (预期: %d)\n", page.List[0].VoteCount, expected)
	fmt.Println("--------------------------------------------------")

	if after.ViewCount != n || int64(page.List[0].VoteCount) != expected {
		os.Exit(1)
	}
}

func must(err error) {
	if err != nil {
		fmt.Printf("请求失败: %v\n", err)
		os.Exit(1)
	}
}

// call 发送请求并解析统一响应，业务码非 0 视为失败
func call(method, path, token string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, *baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || env.Code != 0 {
		return fmt.Errorf("%s %s: %d %s", method, path, env.Code, env.Message)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
